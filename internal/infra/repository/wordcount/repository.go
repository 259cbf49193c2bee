package wordcount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/9triver/multilang/internal/infra/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Repo 单词计数仓库
type Repo interface {
	// Increment 将 word 的计数增加 delta 并返回新值
	Increment(ctx context.Context, word string, delta int64) (int64, error)
	// Get 返回 word 的计数，不存在时为 0
	Get(ctx context.Context, word string) (int64, error)
	// Top 返回计数最高的 n 个单词
	Top(ctx context.Context, n int) ([]WordCount, error)
	Close() error
}

// WordCount 单个单词的计数
type WordCount struct {
	Word      string    `db:"word"`
	Count     int64     `db:"count"`
	UpdatedAt time.Time `db:"updated_at"`
}

// repoSQLite SQLite 实现
type repoSQLite struct {
	db *sql.DB
}

// NewRepoSQLite 创建基于 SQLite 的计数仓库
func NewRepoSQLite(cfg database.Config) (Repo, error) {
	dbPath := cfg.WordCountDBPath
	// 确保数据库目录存在
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetimeSeconds > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSeconds) * time.Second)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &repoSQLite{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logrus.Infof("Word count repository initialized with SQLite at %s", dbPath)
	return repo, nil
}

// initSchema 初始化数据库表结构
func (r *repoSQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS word_counts (
		word TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_word_counts_count ON word_counts(count DESC);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *repoSQLite) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *repoSQLite) Increment(ctx context.Context, word string, delta int64) (int64, error) {
	query := `
	INSERT INTO word_counts (word, count, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(word) DO UPDATE SET count = count + excluded.count, updated_at = excluded.updated_at
	RETURNING count
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, word, delta, time.Now()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment %q: %w", word, err)
	}
	return count, nil
}

func (r *repoSQLite) Get(ctx context.Context, word string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count FROM word_counts WHERE word = ?`, word).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %q: %w", word, err)
	}
	return count, nil
}

func (r *repoSQLite) Top(ctx context.Context, n int) ([]WordCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT word, count, updated_at FROM word_counts ORDER BY count DESC, word ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top words: %w", err)
	}
	defer rows.Close()

	var result []WordCount
	for rows.Next() {
		var wc WordCount
		if err := rows.Scan(&wc.Word, &wc.Count, &wc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan word count: %w", err)
		}
		result = append(result, wc)
	}
	return result, rows.Err()
}
