package web

import (
	"html/template"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		data, err := fs.ReadFile(Files, name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestIndexTemplateParses(t *testing.T) {
	tmpl, err := template.ParseFS(Files, "index.html")
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("index.html"))
}
