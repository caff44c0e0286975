package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/files"
	"github.com/sakura24999/data-analysis-dashboard/internal/shared/testutil"
)

func TestReportArchive(t *testing.T) {
	dir := t.TempDir()
	logger, logs := testutil.NewTestLogger(nil)
	archive := NewReportArchive(dir, logger)
	ctx := context.Background()

	reports, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)

	first := testutil.WriteFile(t, dir, "first.md", "# First\n")
	testutil.Touch(t, first, time.Now().Add(-time.Minute))
	testutil.WriteFile(t, dir, "second.md", "# Second\n")
	testutil.WriteFile(t, dir, "processed.csv", "a\n1\n")

	reports, err = archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "second.md", reports[0].Name)

	f, info, err := archive.Open(ctx, "first.md")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "# First\n", string(body))
	assert.Equal(t, "first.md", info.Name)

	_, _, err = archive.Open(ctx, "processed.csv")
	assert.ErrorIs(t, err, files.ErrInvalidName)

	require.NoError(t, archive.Delete(ctx, "first.md"))
	testutil.AssertLogged(t, logs, slog.LevelInfo, "Saved report deleted")
	assert.ErrorIs(t, archive.Delete(ctx, "first.md"), files.ErrNotFound)

	reports, err = archive.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
