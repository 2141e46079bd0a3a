package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/infrastructure/config"
)

// cfg is loaded once per invocation by the root command's pre-run hook.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bayesab",
	Short: "Bayesian A/B test readout calculator",
	Long: `bayesab reads out A/B tests the Bayesian way.

Each group's conversion rate gets a Beta posterior under a uniform prior.
Paired posterior draws give the distribution of percent lift, and the
probability that lift exceeds your minimum decides the winner.

Run "bayesab serve" for the interactive calculator or "bayesab analyze"
for a one-off readout in the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.InitLogger(c.Log); err != nil {
		return err
	}
	cfg = c
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(readoutsCmd)
	rootCmd.AddCommand(migrateCmd)
}
