package migrate

import (
	"context"
	"database/sql"

	"realm-map/internal/logger"
)

// 背景：首次运行自动创建古名覆盖表
// 约束：使用 IF NOT EXISTS，可重复执行
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _realm_names (
            modern_name TEXT PRIMARY KEY,
            alternate_name TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_realm_names_updated ON _realm_names(updated_at DESC)`,
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
