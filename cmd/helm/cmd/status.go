package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmorgan-fx/helm/journal"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gate configuration, venue health, and portfolio state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	r := buildRouter(ctx, cfg)
	gate := buildGate(cfg)

	st := gate.Status()
	fmt.Println("Gate")
	fmt.Printf("  mode:            %s\n", st.Mode)
	fmt.Printf("  min notional:    %.0f\n", st.MinNotional)
	fmt.Printf("  min timeframe:   %s\n", st.MinTimeframe)
	fmt.Printf("  margin cap:      %.0f%%\n", st.MaxMarginPct*100)
	fmt.Printf("  min reward/risk: %.1f\n", st.MinRewardRisk)
	fmt.Printf("  OCO mandatory:   %v\n", st.OCOMandatory)
	fmt.Println()

	fmt.Println("Venues")
	for _, name := range r.Venues() {
		conn, _ := r.Connector(name)
		ok, detail := conn.Heartbeat(ctx)
		if ok {
			fmt.Printf("  %-10s %s\n", name, conn.State())
		} else {
			fmt.Printf("  %-10s %s (%s)\n", name, conn.State(), detail)
		}
	}
	fmt.Println()

	state := r.GetPortfolioState(ctx)
	fmt.Println("Portfolio")
	fmt.Printf("  balance:         %.2f\n", state.TotalBalance)
	fmt.Printf("  NAV:             %.2f\n", state.TotalNAV)
	fmt.Printf("  margin used:     %.2f (%.1f%%)\n", state.MarginUsed, state.MarginUsedPct*100)
	fmt.Printf("  daily drawdown:  %.2f%%\n", state.DailyDrawdownPct*100)
	fmt.Printf("  open positions:  %d\n", len(state.Positions))
	for _, p := range state.Positions {
		fmt.Printf("    %-10s %-4s %12.2f units  P/L %.2f  (%s)\n",
			p.Symbol, p.Side, p.Units, p.UnrealizedPL, p.Venue)
	}

	if cfg.Journal.Type == "sqlite" {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		recent, err := j.RecentDecisions(10)
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		fmt.Println()
		fmt.Println("Recent decisions")
		for _, d := range recent {
			verdict := "blocked "
			if d.Approved {
				verdict = "approved"
			}
			fmt.Printf("  %s  %s %-10s %-4s %s\n",
				d.Time.Format("01-02 15:04:05"), verdict, d.Symbol, d.Direction, d.Reason)
		}
	}
	return nil
}
