package http

import (
	"context"
	"io"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/services"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// SessionServiceInterface defines the session operations the handlers depend on
type SessionServiceInterface interface {
	Load(ctx context.Context, name string, r io.Reader, delimiter rune) (domain.DataSummary, error)
	Reset(ctx context.Context)
	Summary(ctx context.Context) (domain.DataSummary, error)
	FilterOptions(ctx context.Context) (domain.FilterSchema, error)
	Selection(ctx context.Context) domain.FilterSelection
	SetSelection(ctx context.Context, sel domain.FilterSelection) domain.FilterSelection

	Records(ctx context.Context, limit int) (domain.FilteredView, error)
	Display(ctx context.Context) (exporter.DisplayTable, error)
	Overview(ctx context.Context) (domain.Overview, error)
	Pareto(ctx context.Context, value domain.ValueField, group domain.GroupField) (domain.ParetoResult, error)
	Strategic(ctx context.Context) (domain.StrategicAnalysis, error)
	Simulate(ctx context.Context, req services.SimulationRequest) (services.SimulationReport, error)

	ExportRecords(ctx context.Context, w io.Writer, f exporter.Format) (string, error)
	ExportSimulation(ctx context.Context, w io.Writer, f exporter.Format, req services.SimulationRequest) (string, error)
}

var _ SessionServiceInterface = (*services.SessionService)(nil)
