package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

type Dialect struct{}

func NewSQLiteConnector(connectionString string, pool engine.PoolOptions) (*engine.Gateway, error) {
	db, err := sqlx.Open("sqlite3", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gw := engine.NewGateway(db, Dialect{}, pool)

	// Test the connection
	if err := gw.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gw, nil
}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) ColumnType(t types.SQLType) string {
	switch t {
	case types.Integer:
		return "INTEGER"
	case types.Float:
		return "REAL"
	case types.DateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (Dialect) AutoIncrementKey() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (Dialect) ListTables(ctx context.Context, q engine.Execer) ([]string, error) {
	var tables []string
	err := q.SelectContext(ctx, &tables, `
		SELECT name
		FROM sqlite_master
		WHERE type='table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

func (Dialect) TableExists(ctx context.Context, q engine.Execer, table string) (bool, error) {
	var exists bool
	err := q.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM sqlite_master
			WHERE type='table' AND name = ?
		)`, table)
	return exists, err
}

func (Dialect) Columns(ctx context.Context, q engine.Execer, table string) ([]types.Column, error) {
	rows, err := q.QueryxContext(ctx, `
		SELECT name, type, "notnull"
		FROM pragma_table_info(?)
		ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType string
		var notNull int

		if err := rows.Scan(&name, &dataType, &notNull); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:     name,
			Type:     dataType,
			Nullable: notNull == 0,
		})
	}

	return columns, rows.Err()
}

func (Dialect) PrimaryKeys(ctx context.Context, q engine.Execer, table string) ([]string, error) {
	var primaryKeys []string
	err := q.SelectContext(ctx, &primaryKeys, `
		SELECT name
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk`, table)
	return primaryKeys, err
}

func (Dialect) Indexes(ctx context.Context, q engine.Execer, table string) ([]types.Index, error) {
	var list []struct {
		Name   string `db:"name"`
		Unique bool   `db:"unique"`
	}
	err := q.SelectContext(ctx, &list, `
		SELECT name, "unique"
		FROM pragma_index_list(?)
		WHERE origin != 'pk'`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	var indexes []types.Index
	for _, idx := range list {
		var indexColumns []string
		err := q.SelectContext(ctx, &indexColumns, `
			SELECT name
			FROM pragma_index_info(?)
			ORDER BY seqno`, idx.Name)
		if err != nil {
			continue // Skip this index if we can't get its columns
		}

		if len(indexColumns) > 0 {
			indexes = append(indexes, types.Index{
				Name:    idx.Name,
				Columns: indexColumns,
				Unique:  idx.Unique,
			})
		}
	}

	return indexes, nil
}
