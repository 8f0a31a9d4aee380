package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/casualjim/simmer"
	"github.com/casualjim/simmer/pkg/slogx"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type config struct {
	order    string
	delay    time.Duration
	logLevel string
	capacity    int
	dump        bool
	snapshotDir string
}

func newRootCmd() *cobra.Command {
	cfg := config{
		order:    "all",
		delay:    100 * time.Millisecond,
		logLevel: envOr("SIMMER_LOG_LEVEL", "warn"),
		capacity: simmer.DefaultCapacity,
	}
	if v := os.Getenv("SIMMER_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.capacity = n
		}
	}

	cmd := &cobra.Command{
		Use:   "simmer-demo",
		Short: "Run the hello/world actors against a simmer registry",
		Long: `simmer-demo starts a registry and two actors. "hello" publishes a greeting
on world's "talk" channel, waiting for world to come online when nobody is
listening yet. "world" subscribes and answers with the completed greeting.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), cfg.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := selectOrders(cfg.order, cfg.delay)
			if err != nil {
				return err
			}
			if cfg.capacity < 1 {
				return fmt.Errorf("capacity must be at least 1, got %d", cfg.capacity)
			}
			for _, o := range orders {
				if err := runOrder(cmd.Context(), cmd.OutOrStdout(), o, cfg); err != nil {
					slog.Error("demo failed", slog.String("order", o.name), slogx.Error(err))
					return err
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&cfg.order, "order", cfg.order, "spawn order: hello-first, world-first, hello-first-delay, world-first-delay or all")
	cmd.Flags().DurationVar(&cfg.delay, "delay", cfg.delay, "pause between spawning the actors in the delayed orders")
	cmd.Flags().IntVar(&cfg.capacity, "capacity", cfg.capacity, "values retained per channel (env SIMMER_CAPACITY)")
	cmd.Flags().BoolVar(&cfg.dump, "dump", false, "print the channel directory after each run")
	cmd.Flags().StringVar(&cfg.snapshotDir, "snapshot-dir", "", "write the channel directory of each run as <order>.json into this directory")
	cmd.PersistentFlags().StringVar(&cfg.logLevel, "log-level", cfg.logLevel, "log level (env SIMMER_LOG_LEVEL)")

	cmd.AddCommand(newInspectCmd())
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogging(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp}
	log := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
	))
	return nil
}

// runOrder runs one spawn order against its own registry.
func runOrder(ctx context.Context, w io.Writer, o order, cfg config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	r := simmer.New(simmer.WithName(o.name), simmer.WithCapacity(cfg.capacity))
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	greeting, err := o.run(ctx, r)
	if err != nil {
		_ = r.Shutdown()
		<-done
		return err
	}
	fmt.Fprintf(w, "%s %s\n", color.CyanString("%-18s", o.name), color.GreenString(greeting))

	if cfg.dump {
		infos, err := r.Channels(ctx)
		if err != nil {
			return err
		}
		pp.Fprintln(w, infos)
	}

	if cfg.snapshotDir != "" {
		data, err := r.ChannelsJSON(ctx)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.snapshotDir, o.name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		slog.Debug("wrote snapshot", slog.String("path", path))
	}

	if err := r.Shutdown(); err != nil {
		return err
	}
	return <-done
}
