package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sigslot-dev/sigslot/internal/config"
	"github.com/sigslot-dev/sigslot/pkg/hub"
	"github.com/sigslot-dev/sigslot/pkg/instrument"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the broadcast hub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))

			h := hub.New(
				hub.WithLogger(logger),
				hub.WithWriteTimeout(cfg.WriteTimeoutDuration()),
			)
			defer h.Close()

			// Route emissions through the Prometheus wrapper.
			h.SetEmitter(instrument.Metrics(h.Signal(),
				instrument.WithNamespace(cfg.MetricsNamespace),
			))

			r := chi.NewRouter()
			r.Use(chimiddleware.Recoverer)
			r.Mount(cfg.HubPath, h.Routes())
			r.Handle("/metrics", promhttp.Handler())

			logger.Info("hub listening",
				"addr", cfg.Addr,
				"hub_path", cfg.HubPath,
			)
			if err := http.ListenAndServe(cfg.Addr, r); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "path to the configuration file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")

	return cmd
}
