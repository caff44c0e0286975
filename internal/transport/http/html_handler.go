package http

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts"
)

// pageData is passed to the index template
type pageData struct {
	Title   string
	Version string
}

// ServeIndex serves index.html from the embedded web assets
func ServeIndex(web fs.FS, logger *slog.Logger) http.HandlerFunc {
	tmpl, err := template.ParseFS(web, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			logger.ErrorContext(r.Context(), "Main page template unavailable", slog.String("error", err.Error()))
			http.Error(w, "Main application page not found", http.StatusNotFound)
			return
		}
		serveHTML(w, r, tmpl, pageData{Title: "Data Analysis Dashboard", Version: contracts.Version})
	}
}

// ServeStatic serves the remaining embedded assets
func ServeStatic(web fs.FS) http.Handler {
	return http.FileServer(http.FS(web))
}

// serveHTML renders tmpl with security headers
func serveHTML(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-XSS-Protection", "1; mode=block")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
}
