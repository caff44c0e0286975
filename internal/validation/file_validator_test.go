package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	rules := InputRules{Extensions: []string{".csv", ".xlsx"}, MaxBytes: 16}

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) string
		wantErr error
	}{
		{
			name: "valid csv",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "data.csv", testutil.CSV("a,b", "1,2"))
			},
		},
		{
			name: "extension is case-insensitive",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "DATA.CSV", "a\n1\n")
			},
		},
		{
			name: "missing",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing.csv")
			},
			wantErr: ErrNotExist,
		},
		{
			name: "directory",
			setup: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "folder.csv")
				require.NoError(t, os.Mkdir(p, 0755))
				return p
			},
			wantErr: ErrNotRegular,
		},
		{
			name: "excel lock file",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "~$book.xlsx", "lock")
			},
			wantErr: ErrTemporaryFile,
		},
		{
			name: "extension not allowed",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "data.json", "{}")
			},
			wantErr: ErrExtension,
		},
		{
			name: "empty",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "empty.csv", "")
			},
			wantErr: ErrEmptyFile,
		},
		{
			name: "too large",
			setup: func(t *testing.T, dir string) string {
				return testutil.WriteFile(t, dir, "big.csv", strings.Repeat("x", 17))
			},
			wantErr: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(nil)
			v := NewFileValidator(logger)

			err := v.ValidateInputFile(tt.setup(t, t.TempDir()), rules)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_NoRules(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "notes.anything", strings.Repeat("x", 1024))
	assert.NoError(t, NewFileValidator(nil).ValidateInputFile(path, InputRules{}))
}

func TestFileValidator_LogsRejections(t *testing.T) {
	logger, logs := testutil.NewTestLogger(nil)
	v := NewFileValidator(logger)

	path := testutil.WriteFile(t, t.TempDir(), "data.json", "{}")
	require.Error(t, v.ValidateInputFile(path, InputRules{Extensions: []string{".csv"}}))

	testutil.AssertLogged(t, logs, slog.LevelError, "extension not allowed")
	r, ok := logs.Find("extension not allowed")
	require.True(t, ok)
	assert.Equal(t, ".json", r.Attrs["extension"])
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	nested := filepath.Join(dir, "a", "b", "report.md")
	require.NoError(t, v.ValidateOutputFile(nested))
	assert.DirExists(t, filepath.Dir(nested))

	assert.ErrorIs(t, v.ValidateOutputFile(dir), ErrNotRegular)
}
