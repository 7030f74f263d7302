package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/melkeydev/datadesk/types"
)

// Execer is the statement-running capability shared by a scoped connection and
// a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Runner is what the ingest and records packages need from storage.
type Runner interface {
	Dialect() Dialect
	WithConn(ctx context.Context, fn func(ctx context.Context, q Execer) error) error
	WithTx(ctx context.Context, fn func(ctx context.Context, q Execer) error) error
}

// PoolOptions configures the pool behind a Gateway. MaxIdle defaults to zero,
// so every operation gets a fresh connection that is closed on release.
type PoolOptions struct {
	MaxOpen int
	MaxIdle int
}

type Gateway struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewGateway(db *sqlx.DB, dialect Dialect, pool PoolOptions) *Gateway {
	db.SetMaxIdleConns(pool.MaxIdle)
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	return &Gateway{db: db, dialect: dialect}
}

func (g *Gateway) Dialect() Dialect {
	return g.dialect
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

// WithConn runs fn on a connection acquired for this call only. The
// connection is released on every exit path.
func (g *Gateway) WithConn(ctx context.Context, fn func(ctx context.Context, q Execer) error) error {
	conn, err := g.db.Connx(ctx)
	if err != nil {
		return &types.StorageError{Op: "acquire connection", Err: err}
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// WithTx runs fn inside a transaction on its own connection. It commits when
// fn returns nil and rolls back on an error or a panic.
func (g *Gateway) WithTx(ctx context.Context, fn func(ctx context.Context, q Execer) error) error {
	return g.withTx(ctx, nil, fn)
}

// WithReadTx is WithTx with a read-only transaction.
func (g *Gateway) WithReadTx(ctx context.Context, fn func(ctx context.Context, q Execer) error) error {
	return g.withTx(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (g *Gateway) withTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, q Execer) error) (err error) {
	conn, err := g.db.Connx(ctx)
	if err != nil {
		return &types.StorageError{Op: "acquire connection", Err: err}
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, opts)
	if err != nil {
		return &types.StorageError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, &types.StorageError{Op: "rollback", Err: rbErr})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &types.StorageError{Op: "commit", Err: err}
	}
	return nil
}

func (g *Gateway) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := g.WithReadTx(ctx, func(ctx context.Context, q Execer) error {
		var err error
		tables, err = g.dialect.ListTables(ctx, q)
		return err
	})
	if err != nil {
		return nil, StorageErr("list tables", err)
	}
	return tables, nil
}

func (g *Gateway) TableExists(ctx context.Context, table string) (bool, error) {
	if err := ValidateIdent(table); err != nil {
		return false, err
	}

	var exists bool
	err := g.WithConn(ctx, func(ctx context.Context, q Execer) error {
		var err error
		exists, err = g.dialect.TableExists(ctx, q, table)
		return err
	})
	if err != nil {
		return false, StorageErr("check table existence", err)
	}
	return exists, nil
}

// CountRows returns COUNT(*) of table.
func (g *Gateway) CountRows(ctx context.Context, table string) (int64, error) {
	if err := ValidateIdent(table); err != nil {
		return 0, err
	}

	var n int64
	err := g.WithConn(ctx, func(ctx context.Context, q Execer) error {
		return q.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", g.dialect.QuoteIdent(table)))
	})
	if err != nil {
		return 0, StorageErr("count rows of "+table, err)
	}
	return n, nil
}

// Sample returns up to limit rows of table, 10 when limit is not positive.
func (g *Gateway) Sample(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := ValidateIdent(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	results := []map[string]any{}
	err := g.WithReadTx(ctx, func(ctx context.Context, q Execer) error {
		var err error
		results, err = sample(ctx, q, g.dialect, table, limit)
		return err
	})
	if err != nil {
		return nil, StorageErr("sample "+table, err)
	}
	return results, nil
}

func sample(ctx context.Context, q Execer, d Dialect, table string, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", d.QuoteIdent(table), limit)
	rows, err := q.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to query db: %w", err)
	}
	defer rows.Close()

	results := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("unable to scan row: %w", err)
		}
		for k, v := range row {
			// text columns come back as []byte from most drivers
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// DescribeTable returns detailed information about a specific table
func (g *Gateway) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	if err := ValidateIdent(table); err != nil {
		return nil, err
	}

	desc := &types.TableDescription{Name: table}
	err := g.WithReadTx(ctx, func(ctx context.Context, q Execer) error {
		exists, err := g.dialect.TableExists(ctx, q, table)
		if err != nil {
			return fmt.Errorf("failed to check table existence: %w", err)
		}
		if !exists {
			return &types.NotFoundError{Table: table}
		}

		if desc.Columns, err = g.dialect.Columns(ctx, q, table); err != nil {
			return fmt.Errorf("failed to load columns: %w", err)
		}

		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", g.dialect.QuoteIdent(table))
		if err := q.GetContext(ctx, &desc.RowCount, countQuery); err != nil {
			return fmt.Errorf("failed to get row count: %w", err)
		}

		// Non-critical, continue without sample data
		if rows, err := sample(ctx, q, g.dialect, table, 5); err == nil {
			desc.SampleData = rows
		}

		if desc.PrimaryKeys, err = g.dialect.PrimaryKeys(ctx, q, table); err != nil {
			return fmt.Errorf("failed to get primary keys: %w", err)
		}
		if desc.Indexes, err = g.dialect.Indexes(ctx, q, table); err != nil {
			return fmt.Errorf("failed to get indexes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, StorageErr("describe "+table, err)
	}
	return desc, nil
}

// DropTable removes an existing table. Dropping a table that does not exist
// is reported as a NotFoundError.
func (g *Gateway) DropTable(ctx context.Context, table string) error {
	if err := ValidateIdent(table); err != nil {
		return err
	}

	err := g.WithConn(ctx, func(ctx context.Context, q Execer) error {
		exists, err := g.dialect.TableExists(ctx, q, table)
		if err != nil {
			return fmt.Errorf("failed to check table existence: %w", err)
		}
		if !exists {
			return &types.NotFoundError{Table: table}
		}

		_, err = q.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", g.dialect.QuoteIdent(table)))
		return err
	})
	if err != nil {
		return StorageErr("drop "+table, err)
	}
	return nil
}

// StorageErr wraps err as a StorageError unless it already carries one of the
// domain error kinds.
func StorageErr(op string, err error) error {
	var (
		se *types.StorageError
		nf *types.NotFoundError
		ie *types.InvalidIdentifierError
	)
	if errors.As(err, &se) || errors.As(err, &nf) || errors.As(err, &ie) {
		return err
	}
	return &types.StorageError{Op: op, Err: err}
}
