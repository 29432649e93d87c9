// cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aceteam-ai/modulus-cli/internal/server"
)

var (
	servePort    int
	servePreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Start an HTTP server exposing the prediction pipeline.

Endpoints:
  GET  /health             status and model load state per variant
  GET  /variants           input schemas
  POST /predict/{variant}  {"values": {...}, "soil_class": "A-4", "use_defaults": true}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := appConfig.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		registry := newRegistry()
		if servePreload {
			errs := registry.Preload()
			for _, name := range registry.Names() {
				h, _ := registry.Handle(name)
				entry := log.WithField("variant", name)
				if h != nil && h.Path() != "" {
					entry = entry.WithField("path", h.Path())
				}
				if err, failed := errs[name]; failed {
					entry.WithError(err).Warn("Model unavailable")
					continue
				}
				entry.Info("Model loaded")
			}
		}

		srv := server.New(server.Config{
			Port:           port,
			Version:        Version,
			RateLimitRPS:   appConfig.Server.RateLimitRPS,
			RateLimitBurst: appConfig.Server.RateLimitBurst,
			Logger:         log,
		}, registry)

		fmt.Fprintf(cmd.OutOrStdout(), "%s Serving predictions on %s\n",
			color.GreenString("✓"), color.CyanString("http://localhost:%d", srv.Port()))
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "Load model artifacts at startup instead of on first request")
	rootCmd.AddCommand(serveCmd)
}
