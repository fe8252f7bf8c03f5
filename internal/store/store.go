// 包 store：古名覆盖表的 PostgreSQL 访问层
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/lib/pq"

	"realm-map/internal/logger"
	"realm-map/internal/naming"
)

var ErrEmptyName = errors.New("empty name")

const upsertSQL = `INSERT INTO _realm_names(modern_name, alternate_name, note)
        VALUES($1,$2,$3)
        ON CONFLICT (modern_name) DO UPDATE SET alternate_name=EXCLUDED.alternate_name, note=EXCLUDED.note, updated_at=now()`

// Store：持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Record：覆盖表中的一行
type Record struct {
	naming.Entry
	Note string
}

// 文档注释：读取全部覆盖条目
// 背景：仅在启动时调用一次，结果叠加到内置表上后冻结；运行期不再读取。
// 约束：主键保证现代名唯一；结果按现代名排序以便日志稳定。
func (s *Store) LoadNames(ctx context.Context) ([]naming.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT modern_name, alternate_name FROM _realm_names ORDER BY modern_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []naming.Entry
	for rows.Next() {
		var e naming.Entry
		if err := rows.Scan(&e.Modern, &e.Alternate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("store_names_loaded", "count", len(out))
	return out, nil
}

// UpsertName：写入或覆盖一条映射
func (s *Store) UpsertName(ctx context.Context, modern, alternate, note string) error {
	modern = strings.TrimSpace(modern)
	alternate = strings.TrimSpace(alternate)
	if modern == "" || alternate == "" {
		return ErrEmptyName
	}
	_, err := s.db.ExecContext(ctx, upsertSQL, modern, alternate, note)
	return err
}

// 文档注释：批量写入（单事务）
// 约束：任一条失败则整体回滚，不留下部分导入的结果。
func (s *Store) UpsertNames(ctx context.Context, entries []naming.Entry, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		m, a := strings.TrimSpace(e.Modern), strings.TrimSpace(e.Alternate)
		if m == "" || a == "" {
			return ErrEmptyName
		}
		if _, err := stmt.ExecContext(ctx, m, a, note); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("store_names_imported", "count", len(entries))
	return nil
}

// DeleteName：删除映射；不存在时返回 sql.ErrNoRows
func (s *Store) DeleteName(ctx context.Context, modern string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM _realm_names WHERE modern_name=$1", modern)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetName：按现代名读取
func (s *Store) GetName(ctx context.Context, modern string) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx, "SELECT modern_name, alternate_name, note FROM _realm_names WHERE modern_name=$1", modern).
		Scan(&r.Modern, &r.Alternate, &r.Note)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListNames：最近更新优先
func (s *Store) ListNames(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, "SELECT modern_name, alternate_name, note FROM _realm_names ORDER BY updated_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Modern, &r.Alternate, &r.Note); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
