package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/export"
	"github.com/alfredjeanlab/casos/internal/hooks"
	"github.com/alfredjeanlab/casos/internal/presence"
	"github.com/alfredjeanlab/casos/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the casos views over HTTP",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		viewers := presence.New()
		viewers.StartReaper(&presence.ReaperConfig{
			OnGone: func(viewer, caseID string) {
				logger.Debug("viewer stream went silent", "viewer", viewer, "case", caseID)
			},
		})
		defer viewers.Stop()

		srv := server.New(casosClient,
			server.WithMetrics(metricsManager),
			server.WithLogger(logger),
			server.WithModes(modes),
			server.WithPresence(viewers),
		)

		// Relay bus events to browsers when NATS is configured.
		var relayCancel context.CancelFunc
		if cfg.NATSURL != "" {
			sub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create event subscriber", "err", err)
			} else {
				var relayCtx context.Context
				relayCtx, relayCancel = context.WithCancel(context.Background())
				go func() {
					if err := srv.Relay(relayCtx, sub); err != nil {
						logger.Error("event relay error", "err", err)
					}
					sub.Close()
				}()
				logger.Info("event relay started", "nats_url", cfg.NATSURL)
			}
		} else {
			logger.Info("live updates disabled (CASOS_NATS_URL not set)")
		}

		// Run the event hook on its own subscription so a slow command
		// never delays the browsers.
		var hooksCancel context.CancelFunc
		if cfg.HookCommand != "" {
			if cfg.NATSURL == "" {
				logger.Warn("hook_command ignored: no NATS URL configured")
			} else if sub, err := events.NewNATSSubscriber(cfg.NATSURL); err != nil {
				logger.Error("failed to create hook subscriber", "err", err)
			} else {
				var hooksCtx context.Context
				hooksCtx, hooksCancel = context.WithCancel(context.Background())
				h := hooks.NewHandler(cfg.HookCommand, cfg.HookTimeout, logger)
				go func() {
					if err := h.StartSubscriber(hooksCtx, sub, cfg.HookTopics); err != nil {
						logger.Error("event hook error", "err", err)
					}
					sub.Close()
				}()
			}
		}

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.NewHTTPHandler(cfg.AuthToken),
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr, "api", cfg.Server, "mode", currentMode())
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the export scheduler if any destinations are configured.
		var scheduler *export.Scheduler
		if cfg.ExportInterval > 0 {
			dests := configuredDestinations(context.Background(), logger)
			if len(dests) > 0 {
				scheduler = export.NewScheduler(casosClient, dests, export.Options{Mode: currentMode()}, cfg.ExportInterval, logger)
				scheduler.OnExport(metricsManager.RecordExport)
				scheduler.Start()
				logger.Info("export scheduler started", "interval", cfg.ExportInterval)
			}
		}

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if relayCancel != nil {
			relayCancel()
			logger.Info("event relay stopped")
		}
		if hooksCancel != nil {
			hooksCancel()
		}
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// configuredDestinations returns the S3 and git destinations enabled in the
// config. A destination that cannot be created is logged and skipped.
func configuredDestinations(ctx context.Context, logger *slog.Logger) []export.Destination {
	var dests []export.Destination
	if cfg.ExportS3Bucket != "" {
		s3Dest, err := export.NewS3Destination(ctx,
			cfg.ExportS3Bucket,
			cfg.ExportS3Key,
			cfg.ExportS3Region,
			cfg.ExportS3Endpoint,
			currentMode,
		)
		if err != nil {
			logger.Error("failed to create S3 export destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("export S3 destination enabled", "bucket", cfg.ExportS3Bucket, "key", cfg.ExportS3Key, "resolved", s3Dest.String())
		}
	}
	if cfg.ExportGitRepo != "" {
		dests = append(dests, export.NewGitDestination(cfg.ExportGitRepo, cfg.ExportGitFile, cfg.ExportGitBranch))
		logger.Info("export git destination enabled", "repo", cfg.ExportGitRepo, "file", cfg.ExportGitFile)
	}
	return dests
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from http_addr)")
}
