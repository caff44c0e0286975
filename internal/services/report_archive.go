package services

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakura24999/data-analysis-dashboard/internal/files"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
)

// ReportArchive lists, opens and deletes the reports saved to the reports
// directory. Saved reports are shared by every session.
type ReportArchive struct {
	discovery *files.Discovery
	manager   *files.Manager
	logger    *slog.Logger
}

// NewReportArchive creates an archive over reportsDir
func NewReportArchive(reportsDir string, logger *slog.Logger) *ReportArchive {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ReportArchive{
		discovery: files.NewDiscovery(reportsDir),
		manager:   files.NewManager(reportsDir, files.ReportExtension),
		logger:    infrastructure.WithComponent(logger, "report_archive"),
	}
}

// List returns the saved reports, newest first
func (a *ReportArchive) List(ctx context.Context) ([]files.FileInfo, error) {
	reports, err := a.discovery.FindReports()
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to list saved reports", slog.String("error", err.Error()))
		return nil, err
	}
	return reports, nil
}

// Open opens a saved report for download. The caller closes the file.
func (a *ReportArchive) Open(ctx context.Context, name string) (*os.File, files.FileInfo, error) {
	f, info, err := a.manager.Open(name)
	if err != nil {
		a.logger.DebugContext(ctx, "Saved report unavailable",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, files.FileInfo{}, err
	}
	return f, info, nil
}

// Delete removes a saved report
func (a *ReportArchive) Delete(ctx context.Context, name string) error {
	if err := a.manager.Remove(name); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "Saved report deleted", slog.String("name", name))
	return nil
}
