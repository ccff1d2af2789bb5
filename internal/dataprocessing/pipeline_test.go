package dataprocessing

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

const sampleCSV = "ChavePrimaria;CPF_CNPJ;PAI;UF;TotalValorRecolhido;TEC;Primeiro Escopo;Valor Total Mensal;Check1\n" +
	"M1;3.36E+13;Vale;MG;1.000,00;TEC01;Sim;100,00;x\n" +
	"M2;123;NA;PA;500,00;TEC02;NÃO;#N/D;x\n" +
	";;;;;;;;\n" +
	"M3;#N/A;FORA;MG;#N/D;;;;\n"

func newTestPipeline(t *testing.T, maxBytes int64) (*Pipeline, *metric.ManualReader) {
	t.Helper()

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	cfg := config.IngestionConfig{Delimiter: ";", MaxUploadBytes: maxBytes}
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	return NewPipeline(cfg, logger, metrics), reader
}

func TestPipelineLoad(t *testing.T) {
	p, reader := newTestPipeline(t, 0)
	fixed := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCSV)...)
	ds, err := p.Load(context.Background(), "base.csv", bytes.NewReader(raw))
	require.NoError(t, err)

	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, "base.csv", ds.Source)
	assert.Equal(t, EncodingUTF8BOM, ds.Encoding)
	assert.Equal(t, fixed, ds.LoadedAt)
	assert.Equal(t, 1, ds.DroppedRows)
	assert.Equal(t, []string{"check1"}, ds.DroppedColumns)
	require.Len(t, ds.Records, 3)

	m1 := ds.Records[0]
	assert.Equal(t, "M1", m1.PrimaryKey)
	assert.Equal(t, "33600000000000", m1.TaxID)
	assert.Equal(t, 1000.0, m1.RoyaltyTotal)
	assert.True(t, m1.IsMapped)
	assert.Equal(t, 1200.0, m1.AnnualValueMapped)

	m2 := ds.Records[1]
	assert.Equal(t, "00000000000123", m2.TaxID)
	assert.False(t, m2.IsMapped)
	assert.Nil(t, m2.MonthlyValueMapped)

	m3 := ds.Records[2]
	assert.Empty(t, m3.TaxID)
	assert.Zero(t, m3.RoyaltyTotal)
	assert.False(t, m3.IsMapped)

	assert.True(t, ds.Schema.HasAll(domain.FieldPrimaryKey, domain.FieldGroup, domain.FieldRoyalty, domain.FieldTier))
	assert.False(t, ds.Schema.Has(domain.FieldSubstance))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	rows := findSum(rm, "cfem_ingest_rows_total")
	require.NotNil(t, rows)
	assert.Equal(t, int64(3), rows.DataPoints[0].Value)
}

func TestPipelineLoadLatin1(t *testing.T) {
	p, _ := newTestPipeline(t, 0)

	latin := []byte{'c', 'h', 'a', 'v', 'e', ';', 'u', 'f', '\n', 'S', 0xE3, 'o', ';', 'S', 'P', '\n'}

	ds, err := p.Load(context.Background(), "latin.csv", bytes.NewReader(latin))
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, ds.Encoding)
	assert.Equal(t, "São", ds.Table.Rows[0][0].Text)
}

func TestPipelineLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		input    string
	}{
		{"empty input", 0, ""},
		{"no header", 0, ";;\n1;2;3\n"},
		{"too large", 16, sampleCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, reader := newTestPipeline(t, tt.maxBytes)

			ds, err := p.Load(context.Background(), "bad.csv", strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(context.Background(), &rm))
			failures := findSum(rm, "cfem_ingest_failures_total")
			require.NotNil(t, failures)
			assert.Equal(t, int64(1), failures.DataPoints[0].Value)
		})
	}
}

func TestPipelineWithDelimiter(t *testing.T) {
	p, _ := newTestPipeline(t, 0)
	comma := p.WithDelimiter(',')

	assert.Equal(t, ';', p.Delimiter())
	assert.Equal(t, ',', comma.Delimiter())

	ds, err := comma.Load(context.Background(), "comma.csv", strings.NewReader("uf,chaveprimaria\nMG,M1\n"))
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "MG", ds.Records[0].State)
}

func TestPipelineLoadFile(t *testing.T) {
	p, _ := newTestPipeline(t, 0)

	path := filepath.Join(t.TempDir(), "base.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := p.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "base.csv", ds.Source)
	assert.Len(t, ds.Records, 3)

	_, err = p.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngestion))
}

func TestSummarize(t *testing.T) {
	p, _ := newTestPipeline(t, 0)
	p.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }

	ds, err := p.Load(context.Background(), "base.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	s := Summarize(ds)
	assert.Equal(t, ds.ID, s.DatasetID)
	assert.Equal(t, 3, s.RowCount)
	assert.Equal(t, 8, s.ColumnCount)
	assert.Equal(t, "05/03/2024 14:30", s.DateProcessed)
	assert.Equal(t, 1, s.DroppedRows)
	assert.Greater(t, s.MemoryUsageMB, 0.0)
	assert.Equal(t, ds.Table.Columns, s.Columns)

	empty := Summarize(nil)
	assert.Zero(t, empty.RowCount)
	assert.NotNil(t, empty.Columns)
}

func findSum(rm metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				return &sum
			}
		}
	}
	return nil
}
