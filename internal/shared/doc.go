// Package shared holds helpers used across packages that belong to no
// single domain.
//
// testutil provides a capturing slog handler for asserting on log output
// and small file fixtures (CSV text, files in a temp directory) for tests
// that exercise loading and report storage.
package shared
