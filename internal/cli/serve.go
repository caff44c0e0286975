package cli

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/sakura24999/data-analysis-dashboard/internal/app"
	"github.com/sakura24999/data-analysis-dashboard/internal/config"
)

// serveOptions are command line overrides applied on top of the loaded config
type serveOptions struct {
	host      string
	port      int
	logLevel  string
	noBrowser bool
}

func (o serveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = o.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = o.port
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if o.noBrowser {
		cfg.Server.OpenBrowser = false
	}
}

func serveCmd(frontend fs.FS, configFile *string) *cobra.Command {
	var opts serveOptions

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)

			application, err := app.NewApplication(cfg, frontend)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}

	c.Flags().StringVar(&opts.host, "host", config.DefaultHost, "Address to listen on")
	c.Flags().IntVarP(&opts.port, "port", "p", config.DefaultPort, "Port to listen on")
	c.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	c.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "Do not open a browser window on start")

	return c
}
