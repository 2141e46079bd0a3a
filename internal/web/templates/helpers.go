package templates

import (
	"fmt"
	"strconv"

	"github.com/emiliopalmerini/bayesab/internal/util"
)

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPercent(p float64) string {
	return util.FormatPercent(p)
}

func formatRate(x float64) string {
	return util.FormatRate(x)
}

func formatInterval(lo, hi float64) string {
	return fmt.Sprintf("[%s, %s]", util.FormatRate(lo), util.FormatRate(hi))
}

func formatPercentInterval(lo, hi float64) string {
	return fmt.Sprintf("[%s, %s]", util.FormatPercent(lo), util.FormatPercent(hi))
}

// verdictClass maps a verdict to its CSS class.
func verdictClass(verdict string) string {
	switch verdict {
	case "experiment_wins":
		return "verdict verdict-experiment"
	case "control_wins":
		return "verdict verdict-control"
	default:
		return "verdict verdict-inconclusive"
	}
}
