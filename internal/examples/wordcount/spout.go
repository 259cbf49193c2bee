package wordcount

import (
	"fmt"
	"math/rand"

	"github.com/9triver/multilang/internal/multilang/spout"
	"github.com/sirupsen/logrus"
)

var sentences = []string{
	"the cow jumped over the moon",
	"an apple a day keeps the doctor away",
	"four score and seven years ago",
	"snow white and the seven dwarfs",
	"i am at two with nature",
}

// SentenceSpout 随机发送句子；失败的句子会在下一次 next 时重放
type SentenceSpout struct {
	out     *spout.Collector
	rnd     *rand.Rand
	pending map[any]string
	replay  []string
	active  bool
}

func NewSentenceSpout(seed int64) *SentenceSpout {
	return &SentenceSpout{
		rnd:     rand.New(rand.NewSource(seed)),
		pending: make(map[any]string),
		active:  true,
	}
}

func (s *SentenceSpout) Open(conf map[string]any, _ any, out *spout.Collector) error {
	s.out = out
	logrus.WithField("conf", len(conf)).Info("Sentence spout opened")
	return nil
}

func (s *SentenceSpout) NextTuple() error {
	if !s.active {
		return nil
	}

	var sentence string
	if n := len(s.replay); n > 0 {
		sentence, s.replay = s.replay[0], s.replay[1:]
	} else {
		sentence = sentences[s.rnd.Intn(len(sentences))]
	}

	id, _, err := s.out.Emit([]any{sentence}, spout.EmitOptions{})
	if err != nil {
		return err
	}
	if id != nil {
		s.pending[fmt.Sprint(id)] = sentence
	}
	return nil
}

func (s *SentenceSpout) Ack(id any) error {
	delete(s.pending, fmt.Sprint(id))
	return nil
}

func (s *SentenceSpout) Fail(id any) error {
	key := fmt.Sprint(id)
	sentence, ok := s.pending[key]
	if !ok {
		return fmt.Errorf("unknown message id %v", id)
	}
	delete(s.pending, key)
	s.replay = append(s.replay, sentence)
	return nil
}

func (s *SentenceSpout) Activate() error {
	s.active = true
	return nil
}

func (s *SentenceSpout) Deactivate() error {
	s.active = false
	return nil
}

// Pending 尚未被 ack 的句子数
func (s *SentenceSpout) Pending() int {
	return len(s.pending)
}
