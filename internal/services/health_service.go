package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// Counter is anything that can report how many items it holds
type Counter interface {
	Len() int
}

// ClientCounter reports connected WebSocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	reportsDir string
	sessions   Counter
	hub        ClientCounter
	startTime  time.Time
	logger     *slog.Logger
}

// NewHealthService creates a health service. sessions and hub may be nil.
func NewHealthService(reportsDir string, sessions Counter, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &HealthService{
		reportsDir: reportsDir,
		sessions:   sessions,
		hub:        hub,
		startTime:  time.Now(),
		logger:     infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusOK,
		Version:   contracts.Version,
		Timestamp: time.Now(),
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// LivenessCheck reports that the process is serving requests
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusAlive,
		Version:   contracts.Version,
		Timestamp: time.Now(),
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// ReadinessCheck verifies the reports directory and the in-memory stores
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	status := api.HealthResponse{
		Status:    StatusReady,
		Version:   contracts.Version,
		Timestamp: time.Now(),
		Checks: map[string]api.CheckResult{
			"reports":   hs.checkReportsDir(),
			"sessions":  hs.checkSessions(),
			"websocket": hs.checkWebSocket(),
		},
	}
	for name, check := range status.Checks {
		if check.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("message", check.Message))
		}
	}
	return status
}

// checkReportsDir makes sure reports can be written
func (hs *HealthService) checkReportsDir() api.CheckResult {
	if err := os.MkdirAll(hs.reportsDir, 0755); err != nil {
		return api.CheckResult{Status: StatusNotReady, Message: fmt.Sprintf("Cannot create reports directory: %v", err)}
	}
	f, err := os.CreateTemp(hs.reportsDir, ".ready-*")
	if err != nil {
		return api.CheckResult{Status: StatusNotReady, Message: fmt.Sprintf("Cannot write to reports directory: %v", err)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return api.CheckResult{Status: StatusReady}
}

func (hs *HealthService) checkSessions() api.CheckResult {
	if hs.sessions == nil {
		return api.CheckResult{Status: StatusNotReady, Message: "session store not initialized"}
	}
	return api.CheckResult{Status: StatusReady, Message: fmt.Sprintf("%d active sessions", hs.sessions.Len())}
}

func (hs *HealthService) checkWebSocket() api.CheckResult {
	if hs.hub == nil {
		return api.CheckResult{Status: StatusNotReady, Message: "websocket hub not initialized"}
	}
	return api.CheckResult{Status: StatusReady, Message: fmt.Sprintf("%d connected clients", hs.hub.ClientCount())}
}

// Version returns version and runtime information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":     info.Version,
		"build_time":  info.BuildTime,
		"git_commit":  info.GitCommit,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"api_version": info.APIVersion,
		"goroutines":  runtime.NumGoroutine(),
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}
