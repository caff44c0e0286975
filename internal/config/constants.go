package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "data-analysis-dashboard"
	AppTitle   = "Data Analysis Dashboard"
	AppVersion = "1.0.0"

	// Server defaults
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8501
	DefaultRequestTimeout = 60 * time.Second

	// Upload limits
	DefaultMaxUploadMB = 200

	// Sessions
	DefaultSessionTTL = 2 * time.Hour

	// WebSocket
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to the base directory)
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "reports"

	// Report defaults
	DefaultReportTitle = "Data Analysis Report"
)

// Version information, set by -ldflags at build time.
var (
	Version   = AppVersion
	Commit    = "none"
	BuildDate = "unknown"
)
