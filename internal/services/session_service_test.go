package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/dataprocessing"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

const sessionCSV = "chaveprimaria;pai;uf;tec;totalvalorrecolhido;primeiro_escopo;valor_total_mensal\n" +
	"M1;Vale;MG;TEC01;1.000,00;Sim;10,00\n" +
	"M2;NA;PA;TEC02;500,00;NÃO;\n" +
	"M3;CSN;MG;TEC01;300,00;;\n" +
	"M4;Vale;SP;TEC03;200,00;;\n"

func newTestSession(t *testing.T) (*SessionService, *metric.ManualReader) {
	t.Helper()

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	cfg := config.Default()

	pipeline := dataprocessing.NewPipeline(cfg.Ingestion, logger, metrics)
	exp := exporter.NewExporter(cfg.Ingestion.DelimiterRune(), logger)
	return NewSessionService(pipeline, exp, cfg.Analytics, metrics, logger), reader
}

func loadSample(t *testing.T, s *SessionService) domain.DataSummary {
	t.Helper()
	summary, err := s.Load(context.Background(), "base.csv", strings.NewReader(sessionCSV), 0)
	require.NoError(t, err)
	return summary
}

func recordKeys(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.PrimaryKey
	}
	return out
}

func TestSessionService_NoDataset(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"summary": func() error { _, err := s.Summary(ctx); return err },
		"filters": func() error { _, err := s.FilterOptions(ctx); return err },
		"records": func() error { _, err := s.Records(ctx, 0); return err },
		"display": func() error { _, err := s.Display(ctx); return err },
		"overview": func() error {
			_, err := s.Overview(ctx)
			return err
		},
		"pareto":    func() error { _, err := s.Pareto(ctx, domain.ValueRoyalty, domain.GroupNone); return err },
		"strategic": func() error { _, err := s.Strategic(ctx); return err },
		"simulate":  func() error { _, err := s.Simulate(ctx, SimulationRequest{}); return err },
		"export": func() error {
			_, err := s.ExportRecords(ctx, &bytes.Buffer{}, exporter.FormatCSV)
			return err
		},
		"export simulation": func() error {
			_, err := s.ExportSimulation(ctx, &bytes.Buffer{}, exporter.FormatCSV, SimulationRequest{})
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrNoDataset)
		})
	}
	assert.False(t, s.HasDataset())
}

func TestSessionService_Load(t *testing.T) {
	s, reader := newTestSession(t)

	summary := loadSample(t, s)
	assert.Equal(t, "base.csv", summary.Source)
	assert.Equal(t, 4, summary.RowCount)
	assert.Equal(t, 7, summary.ColumnCount)
	assert.True(t, s.HasDataset())

	got, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.DatasetID, got.DatasetID)

	options, err := s.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MG", "PA", "SP"}, options.States)
	assert.Equal(t, []string{"CSN", "Vale"}, options.Groups)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	rows := findSum(rm, "cfem_ingest_rows_total")
	require.NotNil(t, rows)
	assert.Equal(t, int64(4), rows.DataPoints[0].Value)
}

func TestSessionService_LoadFailureKeepsDataset(t *testing.T) {
	s, _ := newTestSession(t)
	first := loadSample(t, s)

	_, err := s.Load(context.Background(), "empty.csv", strings.NewReader(""), 0)
	require.Error(t, err)

	got, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.DatasetID, got.DatasetID)
}

func TestSessionService_LoadCustomDelimiter(t *testing.T) {
	s, _ := newTestSession(t)

	csv := "chaveprimaria,uf\nM1,MG\nM2,SP\n"
	summary, err := s.Load(context.Background(), "comma.csv", strings.NewReader(csv), ',')
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ColumnCount)
}

func TestSessionService_Selection(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)

	s.SetSelection(ctx, domain.FilterSelection{States: []string{"MG"}})
	assert.Equal(t, []string{"MG"}, s.Selection(ctx).States)

	view, err := s.Records(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 2, view.Matched)
	assert.True(t, view.FiltersActive)
	assert.Equal(t, []string{"M1", "M3"}, recordKeys(view.Records))

	ov, err := s.Overview(ctx)
	require.NoError(t, err)
	assert.True(t, ov.FiltersActive)
	assert.Equal(t, 2, ov.TotalMines)
	assert.InDelta(t, 1300, ov.RoyaltyTotal, 1e-9)

	t.Run("upload clears the selection", func(t *testing.T) {
		loadSample(t, s)
		assert.False(t, s.Selection(ctx).Active())
	})
}

func TestSessionService_LoadFileKeepsSelection(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "base.csv")
	require.NoError(t, os.WriteFile(path, []byte(sessionCSV), 0644))

	first, err := s.LoadFile(ctx, path)
	require.NoError(t, err)

	s.SetSelection(ctx, domain.FilterSelection{Tiers: []string{"TEC01"}})

	second, err := s.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.NotEqual(t, first.DatasetID, second.DatasetID)
	assert.Equal(t, []string{"TEC01"}, s.Selection(ctx).Tiers)

	_, err = s.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestSessionService_RecordsLimit(t *testing.T) {
	s, _ := newTestSession(t)
	loadSample(t, s)

	view, err := s.Records(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, view.Records, 1)
	assert.Equal(t, 4, view.Matched)
}

func TestSessionService_Display(t *testing.T) {
	s, _ := newTestSession(t)
	loadSample(t, s)

	dt, err := s.Display(context.Background())
	require.NoError(t, err)
	require.Len(t, dt.Rows, 4)
	assert.Equal(t, "Grupo", dt.Columns[0].Label)
	assert.Equal(t, "Vale", dt.Rows[0][0])
}

func TestSessionService_Pareto(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)

	res, err := s.Pareto(ctx, "", domain.GroupNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2"}, res.Keys())
	assert.Equal(t, domain.ValueRoyalty, res.Value)

	grouped, err := s.Pareto(ctx, domain.ValueRoyalty, domain.GroupByHolding)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vale"}, grouped.Keys())

	_, err = s.Pareto(ctx, "bogus", domain.GroupNone)
	assert.ErrorIs(t, err, ErrInvalidValueField)

	_, err = s.Pareto(ctx, domain.ValueRoyalty, "cnpj")
	assert.ErrorIs(t, err, ErrInvalidGroupField)
}

func TestSessionService_Strategic(t *testing.T) {
	s, _ := newTestSession(t)
	loadSample(t, s)

	sa, err := s.Strategic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sa.Mines.TotalMines)
	assert.Equal(t, 2, sa.Mines.ParetoMines)
	assert.Equal(t, 3, sa.Opportunities.UnmappedCount)
	assert.Equal(t, []string{"Vale"}, sa.Groups.Pareto.Keys())
}

func TestSessionService_Simulate(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)

	rate := 10.0
	report, err := s.Simulate(ctx, SimulationRequest{CaptureRate: &rate})
	require.NoError(t, err)
	assert.InDelta(t, 200, report.Result.ProjectedAnnual, 1e-9)
	assert.Equal(t, 3, report.Result.UnmappedCount)
	assert.Equal(t, 4, report.Reference.Mines)
	assert.False(t, report.FiltersActive)

	t.Run("default rate", func(t *testing.T) {
		report, err := s.Simulate(ctx, SimulationRequest{})
		require.NoError(t, err)
		assert.Equal(t, config.DefaultCaptureRate, report.Result.CaptureRate)
		assert.InDelta(t, 600, report.Result.ProjectedAnnual, 1e-9)
	})

	t.Run("selection override leaves the session selection alone", func(t *testing.T) {
		report, err := s.Simulate(ctx, SimulationRequest{Selection: &domain.FilterSelection{States: []string{"SP"}}})
		require.NoError(t, err)
		assert.InDelta(t, 200, report.Result.BaseRoyalty, 1e-9)
		assert.InDelta(t, 25, report.Reference.MarketShare, 1e-9)
		assert.True(t, report.FiltersActive)
		assert.False(t, s.Selection(ctx).Active())
	})

	t.Run("invalid rate", func(t *testing.T) {
		bad := -1.0
		_, err := s.Simulate(ctx, SimulationRequest{CaptureRate: &bad})
		assert.ErrorIs(t, err, ErrInvalidCaptureRate)
	})
}

func TestSessionService_ExportRecords(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)
	s.SetSelection(ctx, domain.FilterSelection{States: []string{"MG"}})

	var buf bytes.Buffer
	name, err := s.ExportRecords(ctx, &buf, exporter.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "cfem_crm_export.csv", name)

	body := strings.TrimPrefix(buf.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "valor_anual_mapeado;status_mapeamento"))
	assert.True(t, strings.HasPrefix(lines[1], "M1;"))
	assert.True(t, strings.HasSuffix(lines[1], ";120;Sim"))
}

func TestSessionService_ExportSimulation(t *testing.T) {
	s, _ := newTestSession(t)
	s.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	loadSample(t, s)

	var buf bytes.Buffer
	name, err := s.ExportSimulation(context.Background(), &buf, exporter.FormatXLSX, SimulationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "simulacao_potencial_20240305_143000.xlsx", name)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestSessionService_Reset(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)
	s.SetSelection(ctx, domain.FilterSelection{States: []string{"MG"}})

	s.Reset(ctx)
	assert.False(t, s.HasDataset())
	assert.False(t, s.Selection(ctx).Active())

	_, err := s.Overview(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestSessionService_RecomputeMetrics(t *testing.T) {
	s, reader := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)

	_, err := s.Overview(ctx)
	require.NoError(t, err)
	_, err = s.Strategic(ctx)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	sum := findSum(rm, "cfem_recompute_total")
	require.NotNil(t, sum)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
}

func TestSessionService_ConcurrentAccess(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	loadSample(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Overview(ctx)
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := s.Load(ctx, "base.csv", strings.NewReader(sessionCSV), 0)
				assert.NoError(t, err)
				return
			}
			s.SetSelection(ctx, domain.FilterSelection{States: []string{"MG"}})
		}(i)
	}
	wg.Wait()

	assert.True(t, s.HasDataset())
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
