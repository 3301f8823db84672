package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmorgan-fx/helm/brain"
	"github.com/cmorgan-fx/helm/engine"
	"github.com/cmorgan-fx/helm/regime"
	sig "github.com/cmorgan-fx/helm/signal"
	"github.com/cmorgan-fx/helm/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading control loop",
	Long: `Run the decision loop: poll the inference service, gate every candidate
signal against the risk charter and the live cross-venue portfolio, and
dispatch approved orders to the owning venue.

The loop stops cleanly on SIGINT/SIGTERM; in-flight venue I/O is allowed to
finish.

Example:
  helm run -f helm.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// brainSource adapts the brain to the engine's signal source contract. It
// passes no snapshot: the candle feed that would drive the ensemble and the
// regime detector is an external collaborator, so in this binary tradable
// signals come from the inference service only.
type brainSource struct {
	b *brain.Brain
}

func (s brainSource) Next(ctx context.Context) *sig.Signal {
	return s.b.GetSignal(ctx, nil)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	j, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	var inference brain.InferenceSource
	if cfg.Inference.URL != "" {
		inference = brain.NewHTTPSource(cfg.Inference.URL)
	}
	ensemble := strategies.NewAggregator(strategies.Ensemble(), strategies.DefaultMinAgreement)
	b := brain.New(inference, ensemble, regime.NewSnapshotDetector())

	tick, err := cfg.Loop.TickDuration()
	if err != nil {
		return err
	}
	halt, err := cfg.Loop.HaltDuration()
	if err != nil {
		return err
	}

	r := buildRouter(ctx, cfg)
	e := engine.New(brainSource{b: b}, buildGate(cfg), r, j, tick, halt)
	return e.Run(ctx)
}
