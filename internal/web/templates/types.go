package templates

//go:generate templ generate

// FormValues are the raw calculator inputs echoed back into the form.
type FormValues struct {
	ControlTrials       int64
	ControlSuccesses    int64
	ExperimentTrials    int64
	ExperimentSuccesses int64
	MinLift             float64
}

type CalculatorPageData struct {
	Form               FormValues
	PersistenceEnabled bool
}

// GroupSummary is one row of the posterior summary table.
type GroupSummary struct {
	Label     string
	Trials    int64
	Successes int64
	Rate      float64
	Alpha     float64
	Beta      float64
	Mean      float64
	Lower     float64
	Upper     float64
}

type ResultsData struct {
	Charts             any    // chart figures, embedded as a JSON script element
	Verdict            string // experiment_wins, control_wins or inconclusive
	Headline           string
	ProbabilityTitle   string
	MinLift            float64
	Probability        float64
	LiftMean           float64
	LiftLower          float64
	LiftUpper          float64
	ExcludedDraws      int
	SampleSize         int
	Groups             []GroupSummary
	PersistenceEnabled bool
}

type ErrorData struct {
	Title   string
	Message string
}

type ReadoutRow struct {
	ID          string
	Name        string
	CreatedAt   string
	Control     string // "successes / trials"
	Experiment  string
	MinLift     float64
	Probability float64
	Verdict     string
	Headline    string
	OpenURL     string
}

type ReadoutsPageData struct {
	Readouts           []ReadoutRow
	PersistenceEnabled bool
}
