package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
)

func samplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in sample datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSamples(cmd.OutOrStdout())
		},
	}
}

func listSamples(w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Rows", "Columns", "Fields"})

	for _, name := range loader.SampleNames() {
		ds, err := loader.Sample(name)
		if err != nil {
			return fmt.Errorf("sample %s: %w", name, err)
		}
		t.AppendRow(table.Row{name, ds.Rows(), ds.Cols(), strings.Join(ds.Names(), ", ")})
	}

	t.Render()
	return nil
}
