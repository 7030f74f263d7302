package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

// Dialect speaks MySQL through information_schema of the current database.
type Dialect struct{}

func NewMySQLConnector(connectionString string, pool engine.PoolOptions) (*engine.Gateway, error) {
	cfg, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	// DATETIME columns scan into time.Time
	cfg.ParseTime = true

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gw := engine.NewGateway(db, Dialect{}, pool)
	if err := gw.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gw, nil
}

func (Dialect) Name() string { return "mysql" }

func (Dialect) QuoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) ColumnType(t types.SQLType) string {
	switch t {
	case types.Integer:
		return "BIGINT"
	case types.Float:
		return "DOUBLE"
	case types.DateTime:
		return "DATETIME"
	default:
		return "VARCHAR(255)"
	}
}

func (Dialect) AutoIncrementKey() string {
	return "BIGINT AUTO_INCREMENT PRIMARY KEY"
}

func (Dialect) ListTables(ctx context.Context, q engine.Execer) ([]string, error) {
	var tables []string
	err := q.SelectContext(ctx, &tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		AND table_schema = DATABASE()
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
			WHERE table_schema = DATABASE() AND table_name = ?
		)`, table)
	return exists, err
}

func (Dialect) Columns(ctx context.Context, q engine.Execer, table string) ([]types.Column, error) {
	rows, err := q.QueryxContext(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = DATABASE()
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
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		AND table_name = ?
		AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	return primaryKeys, err
}

func (Dialect) Indexes(ctx context.Context, q engine.Execer, table string) ([]types.Index, error) {
	rows, err := q.QueryxContext(ctx, `
		SELECT
			index_name,
			GROUP_CONCAT(column_name ORDER BY seq_in_index) as columns,
			NOT non_unique as is_unique
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		AND table_name = ?
		AND index_name != 'PRIMARY'
		GROUP BY index_name, non_unique`, table)
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
