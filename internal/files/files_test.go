package files

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/shared/testutil"
)

func TestDiscovery_FindReports(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	older := testutil.WriteFile(t, dir, "monthly.md", "# Monthly\n")
	newer := testutil.WriteFile(t, dir, "weekly.MD", "# Weekly\n")
	testutil.WriteFile(t, dir, "export.csv", "a,b\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.md"), 0755))
	testutil.Touch(t, older, base)
	testutil.Touch(t, newer, base.Add(time.Hour))

	reports, err := NewDiscovery(dir).FindReports()
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "weekly.MD", reports[0].Name)
	assert.Equal(t, "monthly.md", reports[1].Name)
	assert.Equal(t, int64(len("# Monthly\n")), reports[1].Size)
	assert.Equal(t, older, reports[1].Path)
}

func TestDiscovery_MissingDirectory(t *testing.T) {
	reports, err := NewDiscovery(filepath.Join(t.TempDir(), "nope")).FindReports()
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.NotNil(t, reports)
}

func TestDiscovery_FindByExtension_RelativeDir(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, base, "data/a.csv", "x\n")
	testutil.WriteFile(t, base, "data/b.xlsx", "")
	testutil.WriteFile(t, base, "data/c.txt", "")

	found, err := NewDiscovery(base).FindByExtension("data", ".csv", ".xlsx")
	require.NoError(t, err)

	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a.csv", "b.xlsx"}, names)
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}

func TestManager_Resolve(t *testing.T) {
	m := NewManager("/srv/reports", ReportExtension)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"plain name", "weekly.md", nil},
		{"empty", "", ErrInvalidName},
		{"hidden", ".secret.md", ErrInvalidName},
		{"traversal", "../etc/passwd.md", ErrInvalidName},
		{"nested", "sub/weekly.md", ErrInvalidName},
		{"backslash", `sub\weekly.md`, ErrInvalidName},
		{"wrong extension", "weekly.csv", ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := m.Resolve(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("/srv/reports", tt.input), path)
		})
	}
}

func TestManager_OpenAndRemove(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "weekly.md", "# Weekly\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.md"), 0755))
	m := NewManager(dir, ReportExtension)

	f, info, err := m.Open("weekly.md")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "# Weekly\n", string(data))
	assert.Equal(t, int64(9), info.Size)

	_, _, err = m.Open("missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = m.Open("folder.md")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Remove("weekly.md"))
	assert.NoFileExists(t, filepath.Join(dir, "weekly.md"))
	assert.ErrorIs(t, m.Remove("weekly.md"), ErrNotFound)
}
