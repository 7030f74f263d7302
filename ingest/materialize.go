package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

// Materializer creates the table described by a plan. A table that already
// exists is left untouched, even when its columns differ from the plan, so
// table names must be treated as immutable once created.
type Materializer struct {
	db     engine.Runner
	logger *slog.Logger
}

func NewMaterializer(db engine.Runner, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{db: db, logger: logger}
}

// CreateTableSQL renders plan as a single CREATE TABLE IF NOT EXISTS
// statement for dialect d.
func CreateTableSQL(d engine.Dialect, plan *TablePlan) (string, error) {
	if plan == nil || len(plan.Columns) == 0 || plan.PrimaryKey == "" {
		return "", types.ErrEmptyDataset
	}
	if err := engine.ValidateIdent(plan.Table); err != nil {
		return "", err
	}

	defs := make([]string, 0, len(plan.Columns)+1+len(plan.ForeignKeys))
	for _, col := range plan.Columns {
		if err := engine.ValidateIdent(col.Name); err != nil {
			return "", err
		}
		defs = append(defs, d.QuoteIdent(col.Name)+" "+d.ColumnType(col.Type))
	}

	if err := engine.ValidateIdent(plan.PrimaryKey); err != nil {
		return "", err
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", d.QuoteIdent(plan.PrimaryKey)))

	for _, fk := range plan.ForeignKeys {
		for _, ident := range []string{fk.Column, fk.References.Table, fk.References.Column} {
			if err := engine.ValidateIdent(ident); err != nil {
				return "", err
			}
		}
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			d.QuoteIdent(fk.Column), d.QuoteIdent(fk.References.Table), d.QuoteIdent(fk.References.Column)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(plan.Table), strings.Join(defs, ", ")), nil
}

// Materialize issues the CREATE statement of plan and returns it.
func (m *Materializer) Materialize(ctx context.Context, plan *TablePlan) (string, error) {
	ddl, err := CreateTableSQL(m.db.Dialect(), plan)
	if err != nil {
		return "", err
	}

	err = m.db.WithConn(ctx, func(ctx context.Context, q engine.Execer) error {
		_, err := q.ExecContext(ctx, ddl)
		return err
	})
	if err != nil {
		return "", engine.StorageErr("create table "+plan.Table, err)
	}

	m.logger.Info("table materialized", "table", plan.Table, "definition", ddl)
	return ddl, nil
}
