package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"carnival-tracker/internal/models"
)

var tokenColumns = []string{"tokens_50", "tokens_100", "tokens_haunted"}

// Migrate creates the tables if missing and reconciles columns added after
// the first deployment. Additive only; nothing is dropped or renamed.
func Migrate(ctx context.Context, bunDB *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Transaction)(nil),
		(*models.User)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return EnsureTokenColumns(ctx, bunDB)
}

// EnsureTokenColumns adds the token-count columns to a transactions table
// created before they existed. Safe to run on every startup.
func EnsureTokenColumns(ctx context.Context, bunDB *bun.DB) error {
	if bunDB.Dialect().Name() == dialect.PG {
		for _, col := range tokenColumns {
			stmt := fmt.Sprintf("ALTER TABLE transactions ADD COLUMN IF NOT EXISTS %s BIGINT DEFAULT 0", col)
			if _, err := bunDB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("add column %s: %w", col, err)
			}
		}
		return nil
	}

	// SQLite has no ADD COLUMN IF NOT EXISTS; probe the table first.
	existing, err := sqliteColumns(ctx, bunDB, "transactions")
	if err != nil {
		return err
	}
	for _, col := range tokenColumns {
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE transactions ADD COLUMN %s INTEGER DEFAULT 0", col)
		if _, err := bunDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	return nil
}

func sqliteColumns(ctx context.Context, bunDB *bun.DB, table string) (map[string]bool, error) {
	rows, err := bunDB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal interface{}
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
