package ingest

import (
	"context"
	"log/slog"

	"github.com/melkeydev/datadesk/databases/engine"
)

type UploadResult struct {
	Table string     `json:"table"`
	Plan  *TablePlan `json:"plan"`
	DDL   string     `json:"ddl"`
	Rows  int64      `json:"rows"`
}

// Pipeline turns a dataset into a populated table: infer, materialize, load.
type Pipeline struct {
	inferencer   *Inferencer
	materializer *Materializer
	loader       *Loader
}

func NewPipeline(db engine.Runner, naming NamingStrategy, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		inferencer:   NewInferencer(naming),
		materializer: NewMaterializer(db, logger),
		loader:       NewLoader(db, logger),
	}
}

// Upload creates table from ds if it does not exist yet and loads every row.
// A failed load leaves the created table empty.
func (p *Pipeline) Upload(ctx context.Context, table string, ds *Dataset) (*UploadResult, error) {
	plan, err := p.inferencer.Infer(table, ds)
	if err != nil {
		return nil, err
	}

	ddl, err := p.materializer.Materialize(ctx, plan)
	if err != nil {
		return nil, err
	}

	rows, err := p.loader.Load(ctx, plan, ds)
	if err != nil {
		return nil, err
	}

	return &UploadResult{Table: table, Plan: plan, DDL: ddl, Rows: rows}, nil
}
