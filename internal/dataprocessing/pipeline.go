package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Pipeline loads a raw extract into an immutable Dataset:
// read → decode → parse → clean → derive.
type Pipeline struct {
	delimiter rune
	maxBytes  int64
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
	now       func() time.Time
}

// NewPipeline creates a pipeline from the ingestion config. Metrics may be nil.
func NewPipeline(cfg config.IngestionConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &Pipeline{
		delimiter: cfg.DelimiterRune(),
		maxBytes:  maxBytes,
		logger:    infrastructure.WithComponent(logger, "pipeline"),
		metrics:   metrics,
		now:       time.Now,
	}
}

// WithDelimiter returns a copy of the pipeline using another delimiter
func (p *Pipeline) WithDelimiter(d rune) *Pipeline {
	cp := *p
	cp.delimiter = d
	return &cp
}

// Delimiter returns the delimiter used for text input
func (p *Pipeline) Delimiter() rune {
	return p.delimiter
}

// LoadFile opens path and loads it
func (p *Pipeline) LoadFile(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIngestionError("failed to open source file", err).WithContext("path", path)
	}
	defer f.Close()

	return p.Load(ctx, filepath.Base(path), f)
}

// Load reads r fully and builds a Dataset. Only fatal ingestion problems
// are returned; malformed cells resolve to fallback values.
func (p *Pipeline) Load(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.load", attribute.String("source", name))
	defer span.End()

	ds, err := p.load(ctx, name, r)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.metrics.RecordLoad(ctx, 0, 0, err)
		p.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	p.metrics.RecordLoad(ctx, len(ds.Records), ds.DroppedRows, nil)
	span.SetAttributes(
		attribute.Int("rows", len(ds.Records)),
		attribute.Int("dropped_rows", ds.DroppedRows),
		attribute.String("encoding", ds.Encoding),
	)
	p.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset_id", ds.ID),
		slog.String("source", name),
		slog.String("encoding", ds.Encoding),
		slog.Int("rows", len(ds.Records)),
		slog.Int("columns", len(ds.Table.Columns)),
		slog.Int("dropped_rows", ds.DroppedRows),
		slog.Any("dropped_columns", ds.DroppedColumns))

	return ds, nil
}

func (p *Pipeline) load(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	var raw []byte
	if err := p.stage(ctx, infrastructure.StageRead, func(context.Context) error {
		var err error
		raw, err = io.ReadAll(io.LimitReader(r, p.maxBytes+1))
		if err != nil {
			return apperrors.NewIngestionError("failed to read input", err)
		}
		if int64(len(raw)) > p.maxBytes {
			return apperrors.NewIngestionError(fmt.Sprintf("input exceeds %d bytes", p.maxBytes), nil).
				WithContext("limit", p.maxBytes)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var (
		table    *domain.Table
		dropped  int
		encoding string
	)

	if IsXLSX(name, raw) {
		encoding = "xlsx"
		if err := p.stage(ctx, infrastructure.StageParse, func(context.Context) error {
			var err error
			table, dropped, err = ReadXLSX(raw)
			return err
		}); err != nil {
			return nil, err
		}
	} else {
		var text string
		if err := p.stage(ctx, infrastructure.StageDecode, func(context.Context) error {
			var err error
			text, encoding, err = Decode(raw)
			return err
		}); err != nil {
			return nil, err
		}

		if err := p.stage(ctx, infrastructure.StageParse, func(context.Context) error {
			var err error
			table, dropped, err = ReadTable(text, p.delimiter)
			return err
		}); err != nil {
			return nil, err
		}
	}

	var cleaned CleanResult
	_ = p.stage(ctx, infrastructure.StageClean, func(context.Context) error {
		cleaned = Clean(table)
		return nil
	})

	var (
		records []domain.Record
		schema  domain.Schema
	)
	_ = p.stage(ctx, infrastructure.StageDerive, func(context.Context) error {
		records, schema = Derive(cleaned.Table)
		return nil
	})

	missing := make([]string, 0)
	for field, column := range domain.FieldColumns {
		if !schema.Has(field) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		p.logger.WarnContext(ctx, "source is missing expected columns; dependent analytics use neutral defaults",
			slog.String("source", name),
			slog.Any("missing_columns", missing))
	}

	return &domain.Dataset{
		ID:             uuid.New().String(),
		Source:         name,
		Encoding:       encoding,
		LoadedAt:       p.now(),
		Table:          cleaned.Table,
		Records:        records,
		Schema:         schema,
		DroppedRows:    dropped,
		DroppedColumns: cleaned.DroppedColumns,
	}, nil
}

// stage runs fn inside a span and records its duration
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := infrastructure.StartSpan(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(ctx, name, time.Since(start))

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	p.logger.DebugContext(ctx, "stage complete",
		slog.String("stage", name),
		slog.Duration("duration", time.Since(start)))
	return nil
}
