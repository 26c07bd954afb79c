package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/phishlens/internal/history"
	"github.com/ppiankov/phishlens/internal/llm"
	"github.com/ppiankov/phishlens/internal/pipeline"
	"github.com/ppiankov/phishlens/internal/server"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	Long: `Serve exposes the analyzer and its history as a JSON API:
  GET    /api/health
  POST   /api/analyze   {"url": "..."}
  GET    /api/history
  GET    /api/stats
  DELETE /api/history

Example:
  phishlens serve
  PORT=8080 phishlens serve
  phishlens serve --addr 127.0.0.1:3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	var opts []pipeline.Option
	if cfg.LLM.Enabled {
		explainer, err := llm.NewExplainer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return fmt.Errorf("configure LLM: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := explainer.Ping(pingCtx); err != nil {
			logger.Warn("LLM provider unreachable, explanations will fail until it recovers",
				"provider", explainer.ProviderName(), "error", err)
		}
		cancel()
		opts = append(opts, pipeline.WithExplainer(explainer))
	}

	p := pipeline.NewPipeline(cfg, logger, opts...)
	store := history.NewFileStore(cfg.History.Path)

	fmt.Fprintf(os.Stderr, "PhishLens API on http://localhost%s (history: %s)\n", cfg.Server.ListenAddr, store.Path())
	return server.New(p, store, cfg.History.ListLimit, logger).ListenAndServe(ctx, cfg.Server.ListenAddr)
}
