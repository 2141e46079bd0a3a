package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Show the posterior of a single group",
	Long: `Show the Beta posterior of one group's conversion rate.

With --curve the density is printed as tab-separated x/pdf pairs on
10*max(alpha, beta) points between 0 and 1.

Examples:
  bayesab estimate --trials 1000 --successes 100
  bayesab estimate --trials 50 --successes 5 --curve > posterior.tsv`,
	RunE: runEstimate,
}

var (
	estimateTrials    int64
	estimateSuccesses int64
	estimateCurve     bool
)

func init() {
	estimateCmd.Flags().Int64Var(&estimateTrials, "trials", 0, "Sample size")
	estimateCmd.Flags().Int64Var(&estimateSuccesses, "successes", 0, "Number of successes")
	estimateCmd.Flags().BoolVar(&estimateCurve, "curve", false, "Print the density curve instead of the summary")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	obs := domain.GroupObservation{Trials: estimateTrials, Successes: estimateSuccesses}
	if estimateCurve {
		curve, err := domain.Estimate(obs.Trials, obs.Successes)
		if err != nil {
			return err
		}
		writeCurve(cmd.OutOrStdout(), curve)
		return nil
	}

	pc, err := domain.EstimateGroup("group", obs)
	if err != nil {
		return err
	}
	writeEstimate(cmd.OutOrStdout(), pc)
	return nil
}

func writeEstimate(out io.Writer, pc *domain.PosteriorCurve) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Observed:\t%d / %d (%s)\n", pc.Observed.Successes, pc.Observed.Trials, util.FormatRate(pc.Observed.Rate()))
	fmt.Fprintf(w, "Posterior:\tBeta(%g, %g)\n", pc.Posterior.Alpha, pc.Posterior.Beta)
	fmt.Fprintf(w, "Mean:\t%s\n", util.FormatRate(pc.Mean))
	fmt.Fprintf(w, "95%% interval:\t[%s, %s]\n", util.FormatRate(pc.Lower), util.FormatRate(pc.Upper))
	fmt.Fprintf(w, "Grid points:\t%d\n", len(pc.Curve))
	w.Flush()
}

func writeCurve(out io.Writer, curve domain.DensityCurve) {
	fmt.Fprintln(out, "x\tpdf")
	for _, p := range curve {
		fmt.Fprintf(out, "%g\t%g\n", p.X, p.Y)
	}
}
