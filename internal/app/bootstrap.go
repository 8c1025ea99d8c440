package app

import (
	"log/slog"

	"signal_go/internal/infra"
	"signal_go/internal/market"
)

// Bootstrap orchestrates the startup sequence and owns the shared context
// objects (config, metrics, market state) that everything else receives
// explicitly. There are no package-level singletons.
type Bootstrap struct {
	Config  *infra.Config
	Metrics *infra.Metrics
	State   *market.State
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, wires the logger, and builds the state registry.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // let main handle the error
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))

	b.Metrics = infra.NewMetrics()
	b.State = market.NewState(cfg.Signal.WindowCap)

	slog.Info("bootstrap complete",
		slog.String("app", cfg.App.Name),
		slog.Any("coins", cfg.Stream.Coins),
		slog.Int("window_cap", cfg.Signal.WindowCap))
	return nil
}
