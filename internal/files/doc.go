// Package files lists and serves the Markdown reports saved to the reports
// directory.
//
// Discovery finds files by extension and sorts them newest first. Manager
// resolves a bare file name inside its base directory, refusing anything
// that would escape it, and opens or removes the file.
//
//	catalog := files.NewDiscovery(paths.ReportsDir)
//	reports, err := catalog.FindReports()
//
//	manager := files.NewManager(paths.ReportsDir)
//	f, info, err := manager.Open("weekly_review.md")
package files
