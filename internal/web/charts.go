package web

import (
	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
)

// Plotly figure payloads. The browser passes data and layout straight to
// Plotly.react.

const (
	colorControl    = "#FC766A"
	colorExperiment = "#34558b"
	colorLift       = "#5F4B8B"
)

type figure struct {
	Data   []trace `json:"data"`
	Layout layout  `json:"layout"`
}

type trace struct {
	Type    string    `json:"type,omitempty"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Mode    string    `json:"mode,omitempty"`
	Fill    string    `json:"fill,omitempty"`
	Name    string    `json:"name,omitempty"`
	Marker  *marker   `json:"marker,omitempty"`
	Line    *line     `json:"line,omitempty"`
	Opacity float64   `json:"opacity,omitempty"`
	Visible string    `json:"visible,omitempty"`
}

type marker struct {
	Color string `json:"color"`
}

type line struct {
	Color     string  `json:"color,omitempty"`
	Dash      string  `json:"dash,omitempty"`
	Shape     string  `json:"shape,omitempty"`
	Smoothing float64 `json:"smoothing,omitempty"`
}

type axis struct {
	Title string `json:"title"`
}

type font struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
}

type shape struct {
	Type string  `json:"type"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Line line    `json:"line"`
}

type annotation struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

type layout struct {
	Title       string       `json:"title"`
	XAxis       axis         `json:"xaxis"`
	YAxis       axis         `json:"yaxis"`
	HoverMode   string       `json:"hovermode"`
	Font        font         `json:"font"`
	Shapes      []shape      `json:"shapes,omitempty"`
	Annotations []annotation `json:"annotations,omitempty"`
}

// chartData is embedded in the results fragment for the page to draw.
type chartData struct {
	Posterior figure `json:"posterior"`
	Lift      figure `json:"lift"`
}

var chartFont = font{Family: "Georgia, serif", Size: 14}

// maxTracePoints caps how much of a posterior grid is sent to the browser.
const maxTracePoints = 10_000

// thin keeps limit evenly strided points of c, both ends included.
func thin(c domain.DensityCurve, limit int) domain.DensityCurve {
	if len(c) <= limit || limit < 2 {
		return c
	}
	out := make(domain.DensityCurve, limit)
	last := len(c) - 1
	for i := range out {
		out[i] = c[i*last/(limit-1)]
	}
	return out
}

func posteriorTrace(pc *domain.PosteriorCurve, name, color string) trace {
	curve := thin(pc.Curve, maxTracePoints)
	return trace{
		X:      curve.Xs(),
		Y:      curve.Ys(),
		Mode:   "lines",
		Fill:   "tozerox",
		Name:   name,
		Marker: &marker{Color: color},
	}
}

func posteriorFigure(p *calculator.Posteriors) figure {
	return figure{
		Data: []trace{
			posteriorTrace(p.Control, "Control", colorControl),
			posteriorTrace(p.Experiment, "Experiment", colorExperiment),
		},
		Layout: layout{
			Title:     "Posterior pdf of control and experiment's binomial parameter p",
			XAxis:     axis{Title: "p"},
			YAxis:     axis{Title: "pdf"},
			HoverMode: "closest",
			Font:      chartFont,
		},
	}
}

func liftFigure(a *domain.LiftAnalysis) figure {
	maxY := a.Curve.MaxY()
	if maxY == 0 {
		maxY = 1
	}

	data := []trace{{
		X:    a.Curve.Xs(),
		Y:    a.Curve.Ys(),
		Mode: "lines",
		Fill: "tozerox",
		Name: "lift pdf",
		Line: &line{Color: colorLift, Shape: "spline", Smoothing: 1.3},
	}}
	if len(a.Histogram) > 0 {
		xs := make([]float64, len(a.Histogram))
		ys := make([]float64, len(a.Histogram))
		for i, b := range a.Histogram {
			xs[i] = (b.Start + b.End) / 2
			ys[i] = b.Density
		}
		data = append(data, trace{
			Type:    "bar",
			X:       xs,
			Y:       ys,
			Name:    "histogram",
			Marker:  &marker{Color: colorLift},
			Opacity: 0.3,
			Visible: "legendonly",
		})
	}

	return figure{
		Data: data,
		Layout: layout{
			Title:     probabilityTitle(a.Threshold, a.Probability),
			XAxis:     axis{Title: "%lift"},
			YAxis:     axis{Title: "pdf"},
			HoverMode: "closest",
			Font:      chartFont,
			Shapes: []shape{{
				Type: "line",
				X0:   a.Threshold,
				X1:   a.Threshold,
				Y1:   maxY * 1.2,
				Line: line{Color: "black", Dash: "dot"},
			}},
			Annotations: []annotation{{
				X:    a.Threshold,
				Y:    maxY * 1.1,
				Text: "minimum %lift",
			}},
		},
	}
}
