// 包 store: 提供与 PostgreSQL 的数据访问层，保存词云布局、词表得分与运行记录
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wordmap/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// BeginRun: 登记一次工具运行，返回运行 ID；写入的每条记录都带上该 ID 便于追溯
func (s *Store) BeginRun(ctx context.Context, tool string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, "INSERT INTO wordmap_runs(run_id, tool) VALUES($1, $2)", id.String(), tool)
	if err != nil {
		return uuid.Nil, err
	}
	logger.L().Debug("db_run_begin", "run_id", id.String(), "tool", tool)
	return id, nil
}

// FinishRun: 记录结束时间
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "UPDATE wordmap_runs SET finished_at=now() WHERE run_id=$1", id.String())
	return err
}

// 文档注释：按 (pref, name) 写入一条区域布局
// 背景：与 JSON 文件的 upsert 语义一致，同一区域重复运行只保留最新结果。
// 约束：data 为任意可序列化为 JSON 的值，落库为 JSONB。
func (s *Store) UpsertLayout(ctx context.Context, runID uuid.UUID, pref, name string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal layout %s/%s: %w", pref, name, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO layout_records(pref, name, data, run_id, updated_at)
		VALUES($1, $2, $3, $4, now())
		ON CONFLICT (pref, name) DO UPDATE SET data=EXCLUDED.data, run_id=EXCLUDED.run_id, updated_at=now()`,
		pref, name, string(b), runID.String())
	if err != nil {
		return err
	}
	logger.L().Debug("db_layout_upsert", "pref", pref, "name", name)
	return nil
}

// LayoutNames: 某都道府県已写入的区域名，按名称排序
func (s *Store) LayoutNames(ctx context.Context, pref string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM layout_records WHERE pref=$1 ORDER BY name", pref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Score: 单个词的得分
type Score struct {
	Word  string
	Score float64
}

// 文档注释：替换某区域的词表得分
// 背景：词表按区域整体重算，旧结果中已不存在的词需要删除，其余按主键 upsert。
// 约束：在一个事务内完成；scores 为空时清空该区域。
func (s *Store) ReplaceTermScores(ctx context.Context, runID uuid.UUID, pref, name string, scores []Score) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	words := make([]string, len(scores))
	for i, sc := range scores {
		words[i] = sc.Word
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM term_scores WHERE pref=$1 AND name=$2 AND NOT (word = ANY($3))",
		pref, name, pq.Array(words)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO term_scores(pref, name, word, score, run_id)
		VALUES($1, $2, $3, $4, $5)
		ON CONFLICT (pref, name, word) DO UPDATE SET score=EXCLUDED.score, run_id=EXCLUDED.run_id`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, sc := range scores {
		if _, err := stmt.ExecContext(ctx, pref, name, sc.Word, sc.Score, runID.String()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("db_term_scores_replaced", "pref", pref, "name", name, "words", len(scores))
	return nil
}

// TopWords: 某词得分最高的区域，供前端检索使用
func (s *Store) TopWords(ctx context.Context, word string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT pref || '/' || name FROM term_scores WHERE word=$1 ORDER BY score DESC, pref, name LIMIT $2", word, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
