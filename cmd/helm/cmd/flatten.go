package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Emergency-close every open position on every reachable venue",
	Long: `Close all open positions, best effort. Venues that cannot be reached are
skipped and reported with zero closes; this command never aborts halfway.`,
	RunE: runFlatten,
}

func init() {
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r := buildRouter(cmd.Context(), cfg)
	closed := r.FlattenAll(cmd.Context())

	total := 0
	for _, name := range r.Venues() {
		fmt.Printf("  %-10s closed %d\n", name, closed[name])
		total += closed[name]
	}
	fmt.Printf("closed %d positions\n", total)
	return nil
}
