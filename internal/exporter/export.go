package exporter

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx
var ErrUnsupportedFormat = apperrors.NewAppValidationError("export format must be csv or xlsx")

// ParseFormat reads a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds an export file name. A non-zero at appends a timestamp.
func FileName(base string, f Format, at time.Time) string {
	if !at.IsZero() {
		base += "_" + at.Format(config.ExportTimestampLayout)
	}
	return base + "." + string(f)
}

// Exporter writes sheets in the requested format
type Exporter struct {
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// NewExporter creates an exporter writing CSV with the given delimiter
func NewExporter(delimiter rune, logger *slog.Logger) *Exporter {
	return &Exporter{
		csv:    NewCSVWriter(delimiter),
		xlsx:   NewXLSXWriter(),
		logger: infrastructure.WithComponent(logger, "exporter"),
	}
}

// Export writes sheet to w. Writer failures are reported as export errors.
func (e *Exporter) Export(ctx context.Context, w io.Writer, f Format, sheet Sheet) error {
	ctx, span := infrastructure.StartSpan(ctx, "export.write",
		attribute.String("format", string(f)),
		attribute.String("sheet", sheet.Name),
		attribute.Int("rows", len(sheet.Rows)))
	defer span.End()

	var err error
	switch f {
	case FormatCSV:
		err = e.csv.Write(w, sheet)
	case FormatXLSX:
		err = e.xlsx.Write(w, sheet)
	default:
		return ErrUnsupportedFormat
	}

	if err != nil {
		infrastructure.RecordError(ctx, err)
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(f)),
			slog.String("sheet", sheet.Name),
			slog.String("error", err.Error()))
		return apperrors.NewExportError("failed to write export", err).WithContext("format", string(f))
	}

	e.logger.InfoContext(ctx, "export written",
		slog.String("format", string(f)),
		slog.String("sheet", sheet.Name),
		slog.Int("rows", len(sheet.Rows)))
	return nil
}
