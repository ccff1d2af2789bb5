package services

import (
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/analytics"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
)

// Session service errors
var (
	// ErrNoDataset is returned by every read operation before a table is loaded
	ErrNoDataset = apperrors.ErrNoDataset

	ErrInvalidCaptureRate = analytics.ErrInvalidCaptureRate
	ErrUnsupportedFormat  = exporter.ErrUnsupportedFormat

	ErrInvalidValueField = apperrors.NewAppValidationError("unknown pareto value field")
	ErrInvalidGroupField = apperrors.NewAppValidationError("unknown pareto group field")
)
