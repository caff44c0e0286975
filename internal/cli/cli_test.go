package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
	"github.com/sakura24999/data-analysis-dashboard/internal/validation"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	return cfg
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{",", ','},
		{`\t`, '\t'},
		{"tab", '\t'},
		{";", ';'},
		{"|", '|'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDelimiter(tt.in), "delimiter %q", tt.in)
	}
}

func TestRunReport_SampleToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := reportOptions{input: "sample:sales", title: "Sales Overview", out: "-", preview: 3}

	err := runReport(context.Background(), testConfig(t), opts, &stdout, &stderr)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout.String(), "# Sales Overview\n"))
}

func TestRunReport_CSVToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(input, []byte("name;score\nalice;90\nbob;\ncarol;75\n"), 0644))
	out := filepath.Join(dir, "scores.md")

	var stdout, stderr bytes.Buffer
	opts := reportOptions{input: input, delimiter: ";", title: "Scores", out: out, preview: 5}

	require.NoError(t, runReport(context.Background(), testConfig(t), opts, &stdout, &stderr))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Scores")
	assert.Contains(t, string(data), "score")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "scores.md")
	assert.Contains(t, stderr.String(), "3")
}

func TestRunReport_DefaultsToReportsDir(t *testing.T) {
	cfg := testConfig(t)
	var stdout, stderr bytes.Buffer
	opts := reportOptions{input: "sample:weather", title: "Weather 2023", preview: 5}

	require.NoError(t, runReport(context.Background(), cfg, opts, &stdout, &stderr))

	paths, err := cfg.GetPaths()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(paths.ReportsDir, "weather_2023.md"))
}

func TestRunReport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"unknown sample", "sample:nope", loader.ErrUnknownSample},
		{"unsupported extension", "data.json", validation.ErrExtension},
		{"missing file", "does-not-exist.csv", validation.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			input := tt.input
			if tt.name == "unsupported extension" {
				input = filepath.Join(t.TempDir(), tt.input)
				require.NoError(t, os.WriteFile(input, []byte("{}"), 0644))
			}

			var stdout, stderr bytes.Buffer
			err := runReport(context.Background(), cfg, reportOptions{input: input, out: "-"}, &stdout, &stderr)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunReport_OutIntoNewDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "dir", "stock.md")
	var stdout, stderr bytes.Buffer

	opts := reportOptions{input: "sample:stock", title: "Stock", out: out, preview: 5}
	require.NoError(t, runReport(context.Background(), testConfig(t), opts, &stdout, &stderr))
	assert.FileExists(t, out)
}

func TestListSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listSamples(&buf))

	for _, name := range loader.SampleNames() {
		assert.Contains(t, buf.String(), name)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cmd := newRootCmd(nil)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), contracts.Version)
	})

	t.Run("json", func(t *testing.T) {
		cmd := newRootCmd(nil)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version", "--json"})

		require.NoError(t, cmd.Execute())
		var info contracts.VersionInfo
		require.NoError(t, json.Unmarshal(out.Bytes(), &info))
		assert.Equal(t, contracts.Version, info.Version)
		assert.Equal(t, contracts.APIVersion, info.APIVersion)
	})
}

func TestReportCommand_RequiresInput(t *testing.T) {
	cmd := newRootCmd(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestRootCommand_ServeFlags(t *testing.T) {
	cmd := newRootCmd(nil)

	for _, name := range []string{"host", "port", "log-level", "no-browser"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "root should accept --%s", name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestServeOptions_Apply(t *testing.T) {
	cmd := serveCmd(nil, new(string))
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "9000", "--no-browser"}))

	opts := serveOptions{port: 9000, host: "0.0.0.0", noBrowser: true}
	cfg := config.Default()
	opts.apply(cmd, cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.DefaultHost, cfg.Server.Host, "unchanged flags keep the config value")
	assert.False(t, cfg.Server.OpenBrowser)
}
