// Package records stores named numeric values in one well-known table and
// reports aggregates over them.
package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

const DefaultTable = "registros"

type Service struct {
	db    engine.Runner
	table string
}

func NewService(db engine.Runner, table string) (*Service, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := engine.ValidateIdent(table); err != nil {
		return nil, err
	}
	return &Service{db: db, table: table}, nil
}

func (s *Service) Table() string {
	return s.table
}

// EnsureTable creates the record table when it is missing.
func (s *Service) EnsureTable(ctx context.Context) error {
	d := s.db.Dialect()
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s, %s %s NOT NULL, %s %s NOT NULL)",
		d.QuoteIdent(s.table),
		d.QuoteIdent("id"), d.AutoIncrementKey(),
		d.QuoteIdent("nombre"), d.ColumnType(types.Text),
		d.QuoteIdent("valor"), d.ColumnType(types.Float),
	)

	err := s.db.WithConn(ctx, func(ctx context.Context, q engine.Execer) error {
		_, err := q.ExecContext(ctx, ddl)
		return err
	})
	if err != nil {
		return engine.StorageErr("create table "+s.table, err)
	}
	return nil
}

// Insert appends one record. Any failure rolls the insert back.
func (s *Service) Insert(ctx context.Context, name string, value float64) error {
	d := s.db.Dialect()
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, %s)",
		d.QuoteIdent(s.table), d.QuoteIdent("nombre"), d.QuoteIdent("valor"),
		d.Placeholder(1), d.Placeholder(2))

	err := s.db.WithTx(ctx, func(ctx context.Context, q engine.Execer) error {
		_, err := q.ExecContext(ctx, query, name, value)
		return err
	})
	if err != nil {
		return engine.StorageErr("insert record", err)
	}
	return nil
}

// List returns every record in the order the store yields them.
func (s *Service) List(ctx context.Context) ([]types.Record, error) {
	d := s.db.Dialect()
	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s",
		d.QuoteIdent("id"), d.QuoteIdent("nombre"), d.QuoteIdent("valor"), d.QuoteIdent(s.table))

	records := []types.Record{}
	err := s.db.WithConn(ctx, func(ctx context.Context, q engine.Execer) error {
		return q.SelectContext(ctx, &records, query)
	})
	if err != nil {
		return nil, engine.StorageErr("list records", err)
	}
	return records, nil
}

// Stats returns MAX, MIN and AVG of every value. With no records all three
// are nil.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	d := s.db.Dialect()
	valor := d.QuoteIdent("valor")
	query := fmt.Sprintf("SELECT MAX(%s), MIN(%s), AVG(%s) FROM %s", valor, valor, valor, d.QuoteIdent(s.table))

	var maxV, minV, avgV sql.NullFloat64
	err := s.db.WithConn(ctx, func(ctx context.Context, q engine.Execer) error {
		return q.QueryRowxContext(ctx, query).Scan(&maxV, &minV, &avgV)
	})
	if err != nil {
		return types.Stats{}, engine.StorageErr("record stats", err)
	}

	return types.Stats{
		Max: nullable(maxV),
		Min: nullable(minV),
		Avg: nullable(avgV),
	}, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
