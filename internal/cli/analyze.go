package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Read out an A/B test",
	Long: `Compute the posterior of each group and the probability that the
experiment's percent lift over control exceeds the minimum lift.

Examples:
  bayesab analyze --ctl-trials 1000 --ctl-successes 100 --exp-trials 1000 --exp-successes 130
  bayesab analyze --ctl-trials 1000 --ctl-successes 100 --exp-trials 1000 --exp-successes 130 --min-lift 0.05
  bayesab analyze ... --save "checkout button"`,
	RunE: runAnalyze,
}

var (
	analyzeInput          calculator.Input
	analyzeSeedControl    uint64
	analyzeSeedExperiment uint64
	analyzeSave           string
	analyzeOutput         string
)

func init() {
	f := analyzeCmd.Flags()
	f.Int64Var(&analyzeInput.ControlTrials, "ctl-trials", 0, "Control sample size")
	f.Int64Var(&analyzeInput.ControlSuccesses, "ctl-successes", 0, "Control successes")
	f.Int64Var(&analyzeInput.ExperimentTrials, "exp-trials", 0, "Experiment sample size")
	f.Int64Var(&analyzeInput.ExperimentSuccesses, "exp-successes", 0, "Experiment successes")
	f.Float64Var(&analyzeInput.MinLift, "min-lift", 0, "Minimum percent lift as a fraction (0.02 = 2%)")
	f.Uint64Var(&analyzeSeedControl, "seed-control", 0, "Seed for control draws (overrides analysis.control_seed)")
	f.Uint64Var(&analyzeSeedExperiment, "seed-experiment", 0, "Seed for experiment draws (overrides analysis.experiment_seed)")
	f.StringVar(&analyzeSave, "save", "", "Save the readout under this name")
	f.StringVarP(&analyzeOutput, "output", "o", formatTable, "Output format: table, json or yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkFormat(analyzeOutput); err != nil {
		return err
	}

	c := *cfg
	if cmd.Flags().Changed("seed-control") {
		c.Analysis.ControlSeed = analyzeSeedControl
	}
	if cmd.Flags().Changed("seed-experiment") {
		c.Analysis.ExperimentSeed = analyzeSeedExperiment
	}

	save := cmd.Flags().Changed("save")
	app, err := NewAppContext(ctx, &c, save)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	res, err := app.Service.Evaluate(ctx, analyzeInput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeOutput == formatTable {
		writeAnalysis(out, res)
	} else if err := writeStructured(out, analyzeOutput, toAnalysisReport(res)); err != nil {
		return err
	}

	if save {
		ro, err := app.Service.SaveAnalysis(ctx, analyzeSave, analyzeInput, res.Lift)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved readout %s (%s)\n", ro.Name, ro.ID)
	}
	return nil
}

func writePosteriorRow(w io.Writer, label string, pc *domain.PosteriorCurve) {
	fmt.Fprintf(w, "%s\t%d / %d\t%s\tBeta(%g, %g)\t%s\t[%s, %s]\n",
		label,
		pc.Observed.Successes, pc.Observed.Trials,
		util.FormatRate(pc.Observed.Rate()),
		pc.Posterior.Alpha, pc.Posterior.Beta,
		util.FormatRate(pc.Mean),
		util.FormatRate(pc.Lower), util.FormatRate(pc.Upper),
	)
}

func writeAnalysis(out io.Writer, res *calculator.Result) {
	a := res.Lift

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tSUCCESSES\tRATE\tPOSTERIOR\tMEAN\t95% INTERVAL")
	writePosteriorRow(w, "Control", res.Posteriors.Control)
	writePosteriorRow(w, "Experiment", res.Posteriors.Experiment)
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Minimum lift:\t%s\n", util.FormatPercent(a.Threshold))
	fmt.Fprintf(w, "P(lift > minimum):\t%s\n", util.FormatPercent(a.Probability))
	fmt.Fprintf(w, "Expected lift:\t%s\n", util.FormatPercent(a.Summary.Mean))
	fmt.Fprintf(w, "95%% interval:\t[%s, %s]\n", util.FormatPercent(a.Summary.Lower), util.FormatPercent(a.Summary.Upper))
	fmt.Fprintf(w, "Draws:\t%s per group (seeds %d, %d)\n", util.FormatNumber(int64(a.SampleSize)), a.Seeds.Control, a.Seeds.Experiment)
	if a.ExcludedDraws > 0 {
		fmt.Fprintf(w, "Excluded:\t%d draws with zero control rate\n", a.ExcludedDraws)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, a.Verdict.Headline())
}
