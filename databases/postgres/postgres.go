package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

// Dialect speaks Postgres, scoped to current_schema().
type Dialect struct{}

func NewPostgresConnector(connectionString string, pool engine.PoolOptions) (*engine.Gateway, error) {
	config, err := pgx.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.PreferSimpleProtocol = true

	db := sqlx.NewDb(stdlib.OpenDB(*config), "pgx")

	gw := engine.NewGateway(db, Dialect{}, pool)
	if err := gw.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gw, nil
}

func (Dialect) Name() string { return "postgres" }

func (Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Dialect) ColumnType(t types.SQLType) string {
	switch t {
	case types.Integer:
		return "BIGINT"
	case types.Float:
		return "DOUBLE PRECISION"
	case types.DateTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR(255)"
	}
}

func (Dialect) AutoIncrementKey() string {
	return "BIGSERIAL PRIMARY KEY"
}

func (Dialect) ListTables(ctx context.Context, q engine.Execer) ([]string, error) {
	var tables []string
	err := q.SelectContext(ctx, &tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = current_schema()
		ORDER BY table_name
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
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table)
	return exists, err
}

func (Dialect) Columns(ctx context.Context, q engine.Execer, table string) ([]types.Column, error) {
	rows, err := q.QueryxContext(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = current_schema()
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, types.Column{
			Name:     name,
			Type:     dataType,
			Nullable: isNullable == "YES",
		})
	}

	return columns, rows.Err()
}

func (Dialect) PrimaryKeys(ctx context.Context, q engine.Execer, table string) ([]string, error) {
	var primaryKeys []string
	err := q.SelectContext(ctx, &primaryKeys, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
		ORDER BY kcu.ordinal_position`, table)
	return primaryKeys, err
}

func (Dialect) Indexes(ctx context.Context, q engine.Execer, table string) ([]types.Index, error) {
	rows, err := q.QueryxContext(ctx, `
		SELECT
			i.relname,
			array_to_string(array_agg(a.attname ORDER BY a.attnum), ','),
			ix.indisunique
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1
		AND t.relnamespace = current_schema()::regnamespace
		AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []types.Index
	for rows.Next() {
		var indexName, columnNames string
		var isUnique bool
		if err := rows.Scan(&indexName, &columnNames, &isUnique); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		indexes = append(indexes, types.Index{
			Name:    indexName,
			Columns: strings.Split(columnNames, ","),
			Unique:  isUnique,
		})
	}

	return indexes, rows.Err()
}
