package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/analytics"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/dataprocessing"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// SimulationRequest drives a simulation. A nil selection uses the session
// selection and a nil rate uses the configured default.
type SimulationRequest struct {
	Selection   *domain.FilterSelection `json:"selection,omitempty"`
	CaptureRate *float64                `json:"capture_rate,omitempty" validate:"omitempty,gte=0"`
}

// SimulationReport is the reference cards plus the projected result
type SimulationReport struct {
	Reference     domain.SimulationReference `json:"reference"`
	Result        domain.SimulationResult    `json:"result"`
	FiltersActive bool                       `json:"filters_active"`
}

// SessionService owns the loaded dataset and the current filter selection
type SessionService struct {
	pipeline *dataprocessing.Pipeline
	exporter *exporter.Exporter
	cfg      config.AnalyticsConfig
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	dataset   *domain.Dataset
	options   *domain.FilterSchema
	selection domain.FilterSelection
}

// NewSessionService creates a session service. Metrics may be nil.
func NewSessionService(pipeline *dataprocessing.Pipeline, exp *exporter.Exporter, cfg config.AnalyticsConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SessionService {
	return &SessionService{
		pipeline: pipeline,
		exporter: exp,
		cfg:      cfg,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "session_service"),
		now:      time.Now,
	}
}

// Load ingests an uploaded table and makes it the session dataset. A zero
// delimiter uses the configured one. The previous selection is cleared.
func (s *SessionService) Load(ctx context.Context, name string, r io.Reader, delimiter rune) (domain.DataSummary, error) {
	p := s.pipeline
	if delimiter != 0 {
		p = p.WithDelimiter(delimiter)
	}

	ds, err := p.Load(ctx, name, r)
	if err != nil {
		return domain.DataSummary{}, err
	}

	s.replace(ctx, ds, true)
	return dataprocessing.Summarize(ds), nil
}

// LoadFile replaces the dataset with the contents of path, keeping the
// current selection. Used at start-up and when the source file changes.
func (s *SessionService) LoadFile(ctx context.Context, path string) (domain.DataSummary, error) {
	ds, err := s.pipeline.LoadFile(ctx, path)
	if err != nil {
		return domain.DataSummary{}, err
	}

	s.replace(ctx, ds, false)
	return dataprocessing.Summarize(ds), nil
}

func (s *SessionService) replace(ctx context.Context, ds *domain.Dataset, resetSelection bool) {
	options := analytics.BuildFilterOptions(ds.Records, ds.Schema)

	s.mu.Lock()
	previous := s.dataset
	s.dataset = ds
	s.options = &options
	if resetSelection {
		s.selection = domain.FilterSelection{}
	}
	s.mu.Unlock()

	attrs := []any{
		slog.String("dataset_id", ds.ID),
		slog.String("source", ds.Source),
		slog.Int("rows", len(ds.Records)),
		slog.Bool("selection_reset", resetSelection),
	}
	if previous != nil {
		attrs = append(attrs, slog.String("replaced_dataset_id", previous.ID))
	}
	s.logger.InfoContext(ctx, "session dataset replaced", attrs...)
}

// Reset clears the dataset and the selection
func (s *SessionService) Reset(ctx context.Context) {
	s.mu.Lock()
	s.dataset = nil
	s.options = nil
	s.selection = domain.FilterSelection{}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session reset")
}

// HasDataset reports whether a table is loaded
func (s *SessionService) HasDataset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset != nil
}

// snapshot returns the current dataset and selection or ErrNoDataset
func (s *SessionService) snapshot() (*domain.Dataset, domain.FilterSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, domain.FilterSelection{}, ErrNoDataset
	}
	return s.dataset, s.selection, nil
}

// Summary reports the loaded dataset
func (s *SessionService) Summary(ctx context.Context) (domain.DataSummary, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return domain.DataSummary{}, err
	}
	return dataprocessing.Summarize(ds), nil
}

// FilterOptions returns the available values of every filter dimension
func (s *SessionService) FilterOptions(ctx context.Context) (domain.FilterSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return domain.FilterSchema{}, ErrNoDataset
	}
	return *s.options, nil
}

// Selection returns the current filter selection
func (s *SessionService) Selection(ctx context.Context) domain.FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SetSelection replaces the current filter selection
func (s *SessionService) SetSelection(ctx context.Context, sel domain.FilterSelection) domain.FilterSelection {
	s.mu.Lock()
	s.selection = sel
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "selection updated", slog.Bool("filters_active", sel.Active()))
	return sel
}

// filtered runs an operation over the filtered view inside a span
func (s *SessionService) filtered(ctx context.Context, op string, sel *domain.FilterSelection) (context.Context, *domain.Dataset, domain.FilteredView, func(), error) {
	ds, current, err := s.snapshot()
	if err != nil {
		return ctx, nil, domain.FilteredView{}, func() {}, err
	}
	if sel == nil {
		sel = &current
	}

	ctx, span := infrastructure.StartSpan(ctx, "session."+op,
		attribute.String("dataset_id", ds.ID),
		attribute.Bool("filters_active", sel.Active()))
	start := time.Now()

	view := analytics.Filter(ds.Records, ds.Schema, *sel)
	span.SetAttributes(attribute.Int("matched", view.Matched))

	s.metrics.RecordRecompute(ctx, op)
	done := func() {
		s.metrics.RecordStage(ctx, infrastructure.StageCompute, time.Since(start))
		span.End()
	}
	return ctx, ds, view, done, nil
}

// Records returns the filtered view. A positive limit truncates the records
// but not the counts.
func (s *SessionService) Records(ctx context.Context, limit int) (domain.FilteredView, error) {
	_, _, view, done, err := s.filtered(ctx, "records", nil)
	if err != nil {
		return domain.FilteredView{}, err
	}
	defer done()

	if limit > 0 && len(view.Records) > limit {
		view.Records = view.Records[:limit]
	}
	return view, nil
}

// Display returns the formatted detail table of the filtered records
func (s *SessionService) Display(ctx context.Context) (exporter.DisplayTable, error) {
	_, ds, view, done, err := s.filtered(ctx, "display", nil)
	if err != nil {
		return exporter.DisplayTable{}, err
	}
	defer done()

	return exporter.BuildDisplayTable(ds.Table, view.Records), nil
}

// Overview computes the headline KPIs of the filtered records
func (s *SessionService) Overview(ctx context.Context) (domain.Overview, error) {
	_, ds, view, done, err := s.filtered(ctx, "overview", nil)
	if err != nil {
		return domain.Overview{}, err
	}
	defer done()

	ov := analytics.Overview(view.Records, ds.Schema)
	ov.FiltersActive = view.FiltersActive
	return ov, nil
}

// Pareto ranks the filtered records, or their groups, by the given measure
func (s *SessionService) Pareto(ctx context.Context, value domain.ValueField, group domain.GroupField) (domain.ParetoResult, error) {
	if value == "" {
		value = domain.ValueRoyalty
	}
	if !analytics.ValidValueField(value) {
		return domain.ParetoResult{}, ErrInvalidValueField
	}
	if !analytics.ValidGroupField(group) {
		return domain.ParetoResult{}, ErrInvalidGroupField
	}

	_, _, view, done, err := s.filtered(ctx, "pareto", nil)
	if err != nil {
		return domain.ParetoResult{}, err
	}
	defer done()

	return analytics.Pareto(view.Records, analytics.ParetoOptions{
		Value:     value,
		Group:     group,
		Threshold: s.cfg.ParetoThreshold,
	}), nil
}

// Strategic computes the mines Pareto, group analysis and opportunity gap
func (s *SessionService) Strategic(ctx context.Context) (domain.StrategicAnalysis, error) {
	_, _, view, done, err := s.filtered(ctx, "strategic", nil)
	if err != nil {
		return domain.StrategicAnalysis{}, err
	}
	defer done()

	return analytics.Strategic(view.Records, s.strategicOptions()), nil
}

func (s *SessionService) strategicOptions() analytics.StrategicOptions {
	return analytics.StrategicOptions{
		Threshold:       s.cfg.ParetoThreshold,
		ChartTopN:       s.cfg.GroupChartTopN,
		PriorityGroups:  s.cfg.PriorityGroupsTopN,
		PriorityTargets: s.cfg.OpportunitiesTopN,
		Opportunities:   s.cfg.OpportunitiesTopN,
	}
}

// Simulate projects capture over the filtered records and reports the
// reference cards against the full base
func (s *SessionService) Simulate(ctx context.Context, req SimulationRequest) (SimulationReport, error) {
	report, _, err := s.simulate(ctx, "simulate", req)
	return report, err
}

func (s *SessionService) simulate(ctx context.Context, op string, req SimulationRequest) (SimulationReport, *domain.Dataset, error) {
	rate := s.cfg.DefaultCaptureRate
	if req.CaptureRate != nil {
		rate = *req.CaptureRate
	}
	if !analytics.ValidCaptureRate(rate) {
		return SimulationReport{}, nil, ErrInvalidCaptureRate
	}

	ctx, ds, view, done, err := s.filtered(ctx, op, req.Selection)
	if err != nil {
		return SimulationReport{}, nil, err
	}
	defer done()

	result, err := analytics.SimulateTop(view.Records, rate, s.cfg.SimulationTopN)
	if err != nil {
		return SimulationReport{}, nil, err
	}

	s.logger.DebugContext(ctx, "simulation computed",
		slog.Float64("capture_rate", rate),
		slog.Int("base_records", result.BaseRecords),
		slog.Int("ticket_sample", result.TicketSample))

	return SimulationReport{
		Reference:     analytics.SimulationReference(ds.Records, view.Records, s.cfg.MinTEC01Sample),
		Result:        result,
		FiltersActive: view.FiltersActive,
	}, ds, nil
}

// ExportRecords writes the filtered records to w and returns the file name
func (s *SessionService) ExportRecords(ctx context.Context, w io.Writer, f exporter.Format) (string, error) {
	ctx, ds, view, done, err := s.filtered(ctx, "export_records", nil)
	if err != nil {
		return "", err
	}
	defer done()

	if err := s.exporter.Export(ctx, w, f, exporter.RecordsSheet(ds.Table, view.Records)); err != nil {
		return "", err
	}
	return exporter.FileName(config.RecordsExportName, f, time.Time{}), nil
}

// ExportSimulation writes the ranked simulation sample to w and returns the file name
func (s *SessionService) ExportSimulation(ctx context.Context, w io.Writer, f exporter.Format, req SimulationRequest) (string, error) {
	report, ds, err := s.simulate(ctx, "export_simulation", req)
	if err != nil {
		return "", err
	}

	if err := s.exporter.Export(ctx, w, f, exporter.SimulationSheet(ds.Table, report.Result)); err != nil {
		return "", err
	}
	return exporter.FileName(config.SimulationExportName, f, s.now()), nil
}
