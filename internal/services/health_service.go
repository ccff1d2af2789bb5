package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
)

// DatasetProbe reports whether the session holds a dataset
type DatasetProbe interface {
	HasDataset() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	session   DatasetProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. session may be nil.
func NewHealthService(version string, session DatasetProbe, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   version,
		session:   session,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"session": hs.checkSession(),
		},
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))

	return status
}

// LivenessCheck returns liveness status with runtime details
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// checkSession reports dataset presence. An empty session is still healthy.
func (hs *HealthService) checkSession() ServiceHealth {
	if hs.session == nil || !hs.session.HasDataset() {
		return ServiceHealth{Status: "ready", Message: "no dataset loaded"}
	}
	return ServiceHealth{Status: "ready", Message: "dataset loaded"}
}
