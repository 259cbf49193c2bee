package wordcount

import (
	"context"
	"fmt"
	"strings"

	wcrepo "github.com/9triver/multilang/internal/infra/repository/wordcount"
	"github.com/9triver/multilang/internal/multilang/bolt"
	"github.com/9triver/multilang/internal/multilang/message"
)

// SplitBolt 将句子拆分为单词，每个单词锚定到输入元组
type SplitBolt struct {
	out *bolt.Collector
}

func (b *SplitBolt) Prepare(_ map[string]any, _ any, out *bolt.Collector) error {
	b.out = out
	return nil
}

func (b *SplitBolt) Execute(t *message.StormTuple) error {
	values := t.ValueList()
	if len(values) == 0 {
		return fmt.Errorf("empty tuple %v", t.ID)
	}
	sentence, ok := values[0].(string)
	if !ok {
		return fmt.Errorf("tuple %v: expected a sentence, got %T", t.ID, values[0])
	}

	anchors := []*message.StormTuple{t}
	for _, word := range strings.Fields(sentence) {
		if _, err := b.out.Emit([]any{strings.ToLower(word)}, bolt.EmitOptions{Anchors: anchors}); err != nil {
			return err
		}
	}
	return nil
}

// CountBolt 在仓库中累计单词计数并发送 [word, count]
type CountBolt struct {
	repo wcrepo.Repo
	out  *bolt.Collector
}

func NewCountBolt(repo wcrepo.Repo) *CountBolt {
	return &CountBolt{repo: repo}
}

func (b *CountBolt) Prepare(_ map[string]any, _ any, out *bolt.Collector) error {
	b.out = out
	return nil
}

func (b *CountBolt) Execute(t *message.StormTuple) error {
	// 定时元组不计数
	if t.IsTick() {
		return nil
	}
	values := t.ValueList()
	if len(values) == 0 {
		return fmt.Errorf("empty tuple %v", t.ID)
	}
	word, ok := values[0].(string)
	if !ok {
		return fmt.Errorf("tuple %v: expected a word, got %T", t.ID, values[0])
	}

	count, err := b.repo.Increment(context.Background(), word, 1)
	if err != nil {
		return err
	}
	_, err = b.out.Emit([]any{word, count}, bolt.EmitOptions{
		Anchors:     []*message.StormTuple{t},
		SkipTaskIDs: true,
	})
	return err
}

func (b *CountBolt) Cleanup() {
	b.repo.Close()
}
