// Package web holds the single-page dashboard served at /.
package web

import "embed"

// Files contains index.html and its static assets
//
//go:embed index.html app.js style.css
var Files embed.FS
