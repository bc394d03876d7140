package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
)

var (
	histFill = drawing.Color{R: 31, G: 119, B: 180, A: 110}
	kdeLine  = drawing.Color{R: 20, G: 70, B: 130, A: 255}
)

func renderChart(ch chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return buf.Bytes(), nil
}

// histogram draws the bins as a filled step outline with the density curve on top.
func histogram(title string, h *analysis.HistogramData, w, ht int) ([]byte, error) {
	if len(h.Counts) == 0 {
		return nil, fmt.Errorf("histogram %q: no bins", title)
	}
	xs := []float64{h.Edges[0]}
	ys := []float64{0}
	maxY := 0.0
	for i, n := range h.Counts {
		xs = append(xs, h.Edges[i], h.Edges[i+1])
		ys = append(ys, float64(n), float64(n))
		maxY = math.Max(maxY, float64(n))
	}
	xs = append(xs, h.Edges[len(h.Edges)-1])
	ys = append(ys, 0)

	xMin, xMax := h.Edges[0], h.Edges[len(h.Edges)-1]
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "count",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, FillColor: histFill, StrokeWidth: 1},
		},
	}
	if len(h.KDEX) > 1 {
		series = append(series, chart.ContinuousSeries{
			Name:    "density",
			XValues: h.KDEX,
			YValues: h.KDEY,
			Style:   chart.Style{StrokeColor: kdeLine, StrokeWidth: 2},
		})
		for _, y := range h.KDEY {
			maxY = math.Max(maxY, y)
		}
		xMin = math.Min(xMin, h.KDEX[0])
		xMax = math.Max(xMax, h.KDEX[len(h.KDEX)-1])
	}

	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     ht,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  string(h.Column),
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: series,
	}
	return renderChart(ch)
}

// weeklyLine draws one rating's weekly means. Empty weeks are left out of
// the line.
func weeklyLine(title string, weeks []time.Time, means []float64, w, ht int) ([]byte, error) {
	var xs []time.Time
	var ys []float64
	for i, m := range means {
		if math.IsNaN(m) {
			continue
		}
		xs = append(xs, weeks[i])
		ys = append(ys, m)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("weekly %q: no populated weeks", title)
	}
	lo, hi := xs[0], xs[len(xs)-1]
	if !hi.After(lo) {
		lo, hi = lo.AddDate(0, 0, -7), hi.AddDate(0, 0, 7)
	}
	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     ht,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 32, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Week",
			Ticks: weekTicks(weeks, 10),
			Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(lo), Max: chart.TimeToFloat64(hi)},
		},
		YAxis: chart.YAxis{
			Name:  "Average Rating",
			Range: &chart.ContinuousRange{Min: 1, Max: 5},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "mean",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2, DotColor: chart.ColorBlue, DotWidth: 3},
			},
		},
	}
	return renderChart(ch)
}

// weekTicks labels at most n week ends, evenly thinned.
func weekTicks(weeks []time.Time, n int) []chart.Tick {
	if len(weeks) == 0 {
		return nil
	}
	stride := (len(weeks) + n - 1) / n
	if stride < 1 {
		stride = 1
	}
	var ticks []chart.Tick
	for i := 0; i < len(weeks); i += stride {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(weeks[i]), Label: weeks[i].Format("2006-01-02")})
	}
	return ticks
}
