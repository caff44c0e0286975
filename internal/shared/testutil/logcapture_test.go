package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	t.Run("captures records and bound attributes", func(t *testing.T) {
		logger, h := NewTestLogger(nil)

		logger.With(slog.String("component", "report")).
			Info("Report built", slog.Int("sections", 4))
		logger.Error("Export failed", slog.String("format", "xlsx"))

		records := h.Records()
		require.Len(t, records, 2)
		assert.Equal(t, "report", records[0].Attrs["component"])
		assert.Equal(t, int64(4), records[0].Attrs["sections"])
		assert.NotContains(t, records[1].Attrs, "component")
	})

	t.Run("flattens groups", func(t *testing.T) {
		logger, h := NewTestLogger(nil)
		logger.WithGroup("dataset").Info("Loaded", slog.Int("rows", 10))

		r, ok := h.Find("Loaded")
		require.True(t, ok)
		assert.Equal(t, int64(10), r.Attrs["dataset.rows"])
	})

	t.Run("filters by level and resets", func(t *testing.T) {
		logger, h := NewTestLogger(nil)
		logger.Debug("debug")
		logger.Warn("warn")
		logger.Warn("warn again")

		assert.Len(t, h.RecordsAt(slog.LevelWarn), 2)
		assert.Len(t, h.RecordsAt(slog.LevelDebug), 1)
		AssertLogged(t, h, slog.LevelWarn, "again")

		h.Reset()
		assert.Empty(t, h.Records())
		AssertNoErrors(t, h)
	})
}

func TestCSV(t *testing.T) {
	assert.Equal(t, "a,b\n1,2\n3,4\n", CSV("a,b", "1,2", "3,4"))
	assert.Equal(t, "a\n", CSV("a"))
}
