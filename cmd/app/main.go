package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"signal_go/internal/api"
	"signal_go/internal/app"
	"signal_go/internal/infra/hyperliquid"
)

const version = "0.1.0"

var (
	flagConfig string
	flagCoins  string
	flagListen string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "signal",
		Short:   "Read-only Hyperliquid market signal layer",
		Long:    "Streams trades and top-of-book from Hyperliquid, maintains rolling per-coin statistics, and serves explainable regime/edge signals over HTTP.",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "configs/config.yaml", "Path to YAML config")
	rootCmd.PersistentFlags().StringVar(&flagCoins, "coins", "", "Comma-separated coin override (e.g. BTC,ETH,SOL)")
	rootCmd.PersistentFlags().StringVar(&flagListen, "listen", "", "API listen address override")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream live market data and serve signals",
		RunE:  runServe,
	}

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Record raw stream frames to an NDJSON file",
		RunE:  runCapture,
	}
	captureCmd.Flags().String("out", "data/capture.ndjson", "Output file")
	captureCmd.Flags().Int("seconds", 60, "Capture duration in seconds")

	replayCmd := &cobra.Command{
		Use:   "replay <capture.ndjson>",
		Short: "Re-feed a captured file and serve signals from the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}

	rootCmd.AddCommand(serveCmd, captureCmd, replayCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrapFromFlags initializes the app and applies CLI overrides.
func bootstrapFromFlags() (*app.Bootstrap, error) {
	if flagCoins != "" {
		os.Setenv("SIGNAL_COINS", strings.TrimSpace(flagCoins))
	}
	if flagListen != "" {
		os.Setenv("SIGNAL_LISTEN_ADDR", strings.TrimSpace(flagListen))
	}
	b := app.NewBootstrap()
	if err := b.Initialize(flagConfig); err != nil {
		return nil, err
	}
	return b, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	b, err := bootstrapFromFlags()
	if err != nil {
		return err
	}
	cfg := b.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := hyperliquid.NewDispatcher(b.State, b.Metrics)
	client := hyperliquid.NewClient(cfg, b.State, dispatcher, b.Metrics)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Disconnect()
	slog.Info("stream client started")

	server := api.NewServer(b.State, cfg.Thresholds(), cfg.Stream.Coins, b.Metrics)
	if err := server.Run(ctx, cfg.Server.ListenAddr); err != nil {
		return err
	}

	slog.Info("shutting down")
	return nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	b, err := bootstrapFromFlags()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	seconds, _ := cmd.Flags().GetInt("seconds")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return hyperliquid.Record(ctx, b.Config, out, time.Duration(seconds)*time.Second)
}

func runReplay(cmd *cobra.Command, args []string) error {
	b, err := bootstrapFromFlags()
	if err != nil {
		return err
	}
	cfg := b.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := hyperliquid.NewDispatcher(b.State, b.Metrics)
	frames, err := hyperliquid.ReplayFile(args[0], dispatcher)
	if err != nil {
		return err
	}
	slog.Info("replay complete", slog.String("file", args[0]), slog.Int("frames", frames))

	server := api.NewServer(b.State, cfg.Thresholds(), cfg.Stream.Coins, b.Metrics)
	return server.Run(ctx, cfg.Server.ListenAddr)
}
