package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

var readoutsCmd = &cobra.Command{
	Use:   "readouts",
	Short: "Manage saved readouts",
	Long:  `List, inspect and delete readouts saved from the web calculator or "bayesab analyze --save".`,
}

var readoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved readouts, newest first",
	RunE:  runReadoutsList,
}

var readoutsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved readout",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadoutsShow,
}

var readoutsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved readout",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadoutsDelete,
}

var (
	readoutsLimit  int
	readoutsOutput string
)

func init() {
	readoutsCmd.AddCommand(readoutsListCmd)
	readoutsCmd.AddCommand(readoutsShowCmd)
	readoutsCmd.AddCommand(readoutsDeleteCmd)

	readoutsListCmd.Flags().IntVarP(&readoutsLimit, "limit", "n", 20, "Maximum number of readouts to show")
	readoutsListCmd.Flags().StringVarP(&readoutsOutput, "output", "o", formatTable, "Output format: table, json or yaml")
	readoutsShowCmd.Flags().StringVarP(&readoutsOutput, "output", "o", formatTable, "Output format: table, json or yaml")
}

func runReadoutsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkFormat(readoutsOutput); err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	readouts, err := app.Service.Readouts(ctx, readoutsLimit)
	if err != nil {
		return err
	}
	if readoutsOutput == formatTable {
		writeReadouts(cmd.OutOrStdout(), readouts)
		return nil
	}
	reports := make([]readoutReport, 0, len(readouts))
	for _, ro := range readouts {
		reports = append(reports, toReadoutReport(ro))
	}
	return writeStructured(cmd.OutOrStdout(), readoutsOutput, reports)
}

func runReadoutsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkFormat(readoutsOutput); err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	ro, err := app.Service.Readout(ctx, args[0])
	if err != nil {
		return err
	}
	if ro == nil {
		return fmt.Errorf("readout not found: %s", args[0])
	}
	if readoutsOutput == formatTable {
		writeReadout(cmd.OutOrStdout(), ro)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), readoutsOutput, toReadoutReport(ro))
}

func runReadoutsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := NewAppContext(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	ro, err := app.Service.Readout(ctx, args[0])
	if err != nil {
		return err
	}
	if ro == nil {
		return fmt.Errorf("readout not found: %s", args[0])
	}
	if err := app.Service.DeleteReadout(ctx, ro.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted readout %s (%s)\n", ro.Name, ro.ID)
	return nil
}

func writeReadouts(out io.Writer, readouts []*domain.Readout) {
	if len(readouts) == 0 {
		fmt.Fprintln(out, "No readouts saved yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSAVED\tCONTROL\tEXPERIMENT\tMIN LIFT\tPROBABILITY\tVERDICT")
	for _, ro := range readouts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d / %d\t%d / %d\t%s\t%s\t%s\n",
			ro.ID, ro.Name, util.FormatDateTime(ro.CreatedAt),
			ro.Control.Successes, ro.Control.Trials,
			ro.Experiment.Successes, ro.Experiment.Trials,
			util.FormatPercent(ro.MinLift), util.FormatPercent(ro.Probability), ro.Verdict)
	}
	w.Flush()
}

func writeReadout(out io.Writer, ro *domain.Readout) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", ro.ID)
	fmt.Fprintf(w, "Name:\t%s\n", ro.Name)
	fmt.Fprintf(w, "Saved:\t%s\n", util.FormatDateTime(ro.CreatedAt))
	fmt.Fprintf(w, "Control:\t%d / %d (%s)\n", ro.Control.Successes, ro.Control.Trials, util.FormatRate(ro.Control.Rate()))
	fmt.Fprintf(w, "Experiment:\t%d / %d (%s)\n", ro.Experiment.Successes, ro.Experiment.Trials, util.FormatRate(ro.Experiment.Rate()))
	fmt.Fprintf(w, "Minimum lift:\t%s\n", util.FormatPercent(ro.MinLift))
	fmt.Fprintf(w, "P(lift > minimum):\t%s\n", util.FormatPercent(ro.Probability))
	fmt.Fprintf(w, "Draws:\t%s per group (seeds %d, %d)\n", util.FormatNumber(int64(ro.SampleSize)), ro.Seeds.Control, ro.Seeds.Experiment)
	fmt.Fprintf(w, "Verdict:\t%s\n", ro.Verdict.Headline())
	w.Flush()
}
