package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmorgan-fx/helm/signal"
)

var decideCmd = &cobra.Command{
	Use:   "decide <signal.json>",
	Short: "Dry-run one signal through the gate",
	Long: `Read a signal from a JSON file, validate it against the charter and the
current cross-venue portfolio, and print the decision. Nothing is dispatched.

The file holds one signal object:
  {"symbol":"EUR_USD","direction":"BUY","timeframe":"H1",
   "notional_value":16000,"entry":1.10,"sl":1.095,"tp":1.115,
   "confidence":0.8,"source":"manual"}`,
	Args: cobra.ExactArgs(1),
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read signal file: %w", err)
	}

	var s signal.Signal
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse signal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	r := buildRouter(ctx, cfg)
	gate := buildGate(cfg)

	state := r.GetPortfolioState(ctx)
	if d := gate.CheckPortfolio(*state); !d.Approved {
		fmt.Printf("BLOCKED  %s (portfolio health)\n", d.Reason)
		return nil
	}

	d := gate.ValidateSignal(s, state.Positions)
	if d.Approved {
		fmt.Printf("APPROVED %s %s %.0f\n", s.Direction, s.Symbol, s.NotionalValue)
	} else {
		fmt.Printf("BLOCKED  %s\n", d.Reason)
	}
	return nil
}
