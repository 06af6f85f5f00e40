package migrate

import (
	"context"
	"database/sql"

	"wordmap/internal/logger"
)

// 背景：首次写库时自动创建词云布局、词表得分与运行记录表，文件产物之外提供可查询的副本
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wordmap_runs (
			run_id UUID PRIMARY KEY,
			tool TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS layout_records (
			pref TEXT NOT NULL,
			name TEXT NOT NULL,
			data JSONB NOT NULL,
			run_id UUID NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (pref, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_layout_records_run ON layout_records(run_id)`,
		`CREATE TABLE IF NOT EXISTS term_scores (
			pref TEXT NOT NULL,
			name TEXT NOT NULL,
			word TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			run_id UUID NOT NULL,
			PRIMARY KEY (pref, name, word)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_term_scores_word ON term_scores(word)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
