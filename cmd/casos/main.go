package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/config"
	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/metrics"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/state"
	"github.com/alfredjeanlab/casos/internal/ui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL    string
	jsonOutput   bool
	modeOverride string
	verbose      bool

	cfg            *config.Config
	stateStore     *state.FileStore
	modes          client.ModeProvider
	casosClient    client.CasosClient
	metricsManager *metrics.Manager
	publisher      events.Publisher
)

var rootCmd = &cobra.Command{
	Use:           "casos <command>",
	Short:         "CLI client for the casos review backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvironment(cmd); err != nil {
			return err
		}
		if err := config.ValidateServer(cfg.Server); err != nil {
			return err
		}
		connect()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if casosClient != nil {
			casosClient.Close()
		}
		if publisher != nil {
			publisher.Close()
		}
	},
}

// localPreRun is used by commands that only touch the local state file.
func localPreRun(cmd *cobra.Command, args []string) error {
	return loadEnvironment(cmd)
}

// loadEnvironment reads .env, the config layers and the state file, then
// applies the active remote and the command-line flags on top.
func loadEnvironment(cmd *cobra.Command) error {
	_ = godotenv.Load()

	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	stateStore = state.NewFileStore(c.StateDir)

	st, err := stateStore.Load()
	if err != nil {
		return fmt.Errorf("reading %s: %w", stateStore.Path(), err)
	}
	if r, ok := st.ActiveRemote(); ok {
		c.Server = r.URL
		if r.Token != "" {
			c.Token = r.Token
		}
		if r.NATSURL != "" {
			c.NATSURL = r.NATSURL
		}
	}
	if cmd.Flags().Changed("server") {
		c.Server = serverURL
	}
	cfg = c

	modes = stateStore
	if modeOverride != "" {
		if !model.Mode(modeOverride).IsValid() {
			return fmt.Errorf("invalid mode %q (must be validate or test)", modeOverride)
		}
		modes = client.StaticMode(modeOverride)
	}
	return nil
}

// connect builds the API client. The publisher is connected lazily by
// publishEvent so that read-only commands never dial NATS.
func connect() {
	metricsManager = metrics.NewManager()
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: metricsManager.RoundTripper(nil),
	}
	opts := []client.Option{client.WithHTTPClient(hc), client.WithRequestIDs()}
	if cfg.Token != "" {
		opts = append(opts, client.WithToken(cfg.Token))
	}
	casosClient = client.NewHTTPClient(cfg.Server, modes, opts...)
}

// newLogger returns the text logger used by long-running commands.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		_ = level.UnmarshalText([]byte(cfg.LogLevel))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// currentMode returns the mode the next request will carry.
func currentMode() string {
	if m := modes.Mode(); m != "" {
		return m
	}
	return model.DefaultMode.String()
}

// publishEvent announces a successful mutation on the bus. Failures are
// reported but never fail the command; the mutation already happened.
func publishEvent(ctx context.Context, topic string, event any) {
	if cfg == nil || cfg.NATSURL == "" {
		return
	}
	if publisher == nil {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: events disabled: %v\n", err)
			publisher = &events.NoopPublisher{}
			return
		}
		publisher = pub
	}
	err := publisher.Publish(ctx, topic, event)
	if metricsManager != nil {
		metricsManager.RecordEventPublished(topic, err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: publishing %s: %v\n", topic, err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "casos API base URL (overrides config and remote)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&modeOverride, "mode", "", "mode for this invocation (validate or test)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "casos", Title: "Cases:"},
		&cobra.Group{ID: "review", Title: "Review:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Cases
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)

	// Review
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(resolutionCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(closeCmd)

	// Views
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)

	// System
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
