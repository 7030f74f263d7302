// Package dashboard backs every dashboard command: table counts, previews,
// spreadsheet uploads, drops and the record operations. Each call reports its
// own failure and leaves the others usable.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/melkeydev/datadesk/databases"
	"github.com/melkeydev/datadesk/ingest"
	"github.com/melkeydev/datadesk/records"
	"github.com/melkeydev/datadesk/types"
)

const DefaultPreviewLimit = 5

type Service struct {
	db       databases.Database
	records  *records.Service
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

func NewService(db databases.Database, rec *records.Service, naming ingest.NamingStrategy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		records:  rec,
		pipeline: ingest.NewPipeline(db, naming, logger),
		logger:   logger,
	}
}

// TableCounts returns the row count of every table.
func (s *Service) TableCounts(ctx context.Context) ([]types.TableCount, error) {
	tables, err := s.db.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]types.TableCount, 0, len(tables))
	for _, t := range tables {
		n, err := s.db.CountRows(ctx, t)
		if err != nil {
			return nil, err
		}
		counts = append(counts, types.TableCount{Name: t, Rows: n})
	}
	return counts, nil
}

func (s *Service) Preview(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	return s.db.Sample(ctx, table, limit)
}

func (s *Service) Describe(ctx context.Context, table string) (*types.TableDescription, error) {
	return s.db.DescribeTable(ctx, table)
}

// Upload creates table from ds and loads its rows.
func (s *Service) Upload(ctx context.Context, table string, ds *ingest.Dataset) (*ingest.UploadResult, error) {
	res, err := s.pipeline.Upload(ctx, table, ds)
	if err != nil {
		s.logger.Error("upload failed", "table", table, "error", err)
		return nil, err
	}
	return res, nil
}

// UploadFile reads a .csv or .xlsx file and uploads it as table.
func (s *Service) UploadFile(ctx context.Context, table, path string) (*ingest.UploadResult, error) {
	ds, err := ingest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.Upload(ctx, table, ds)
}

// UploadReader is UploadFile for an uploaded stream; filename selects the
// format.
func (s *Service) UploadReader(ctx context.Context, table, filename string, r io.Reader) (*ingest.UploadResult, error) {
	format, err := ingest.FormatFromName(filename)
	if err != nil {
		return nil, err
	}
	ds, err := ingest.Read(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return s.Upload(ctx, table, ds)
}

// Drop removes table. Schema changes are not coordinated with concurrent
// writers; callers must serialize them.
func (s *Service) Drop(ctx context.Context, table string) error {
	if err := s.db.DropTable(ctx, table); err != nil {
		return err
	}
	s.logger.Info("table dropped", "table", table)
	return nil
}

func (s *Service) Insert(ctx context.Context, name string, value float64) error {
	return s.records.Insert(ctx, name, value)
}

func (s *Service) List(ctx context.Context) ([]types.Record, error) {
	return s.records.List(ctx)
}

func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	return s.records.Stats(ctx)
}
