package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/insight"
	"github.com/safepath/safepath/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve safety-score and routing over HTTP:

  GET  /health
  GET  /api/safety-score?lon=..&lat=..
  POST /api/routes
  GET  /api/routes/history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		p, err := initPlanner()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		insightClient := insight.New(insight.Config{
			Key:       cfg.Anthropic.Key,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})
		if !insightClient.Enabled() {
			zap.L().Info("route insight disabled (no API key)")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		return server.New(p, st, insightClient).ListenAndServe(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
