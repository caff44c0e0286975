// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the domain packages (loader,
// explore, preprocess, analysis, report, charts) and owns the session
// bookkeeping around them.
//
// # Service Layer Responsibilities
//
//	- Locking the session for the duration of one user action
//	- Converting request contracts into domain configuration
//	- Tracing and metrics around dataset loads and analyses
//	- Notifying open pages over WebSocket when session state changes
//
// # Common Service Pattern
//
//	type ServiceName struct {
//		notifier Notifier
//		metrics  *infrastructure.BusinessMetrics
//		logger   *slog.Logger
//	}
//
//	func (s *ServiceName) Method(ctx context.Context, sess *session.Session, ...) (Result, error) {
//		sess.Lock()
//		defer sess.Unlock()
//		...
//	}
//
// Services return the domain sentinel errors wrapped with context; the
// transport layer maps them to Problem Details responses.
package services
