package cli

import (
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the dashboard command line. frontend holds the embedded UI
// served by the serve command.
func Execute(frontend fs.FS) {
	cmd := newRootCmd(frontend)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(frontend fs.FS) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Browser dashboard for exploring, cleaning and analysing tabular data",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (defaults to config.yaml in the working directory)")

	serve := serveCmd(frontend, &configFile)
	cmd.AddCommand(serve, reportCmd(&configFile), samplesCmd(), versionCmd())

	// running the binary without a subcommand starts the dashboard
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())

	return cmd
}
