package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// CategoryCount is one bar of a count plot.
type CategoryCount struct {
	Value string
	Count int
}

// ValueCounts counts records per label of a categorical column, ordered the
// same way as group keys.
func ValueCounts(recs []feedback.Record, col feedback.Column) ([]CategoryCount, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if !feedback.IsGroupable(col) {
		return nil, &ColumnError{Column: col, Want: "categorical"}
	}
	counts := map[string]int{}
	for _, r := range recs {
		k, _ := r.Label(col)
		counts[k]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sortLabels(keys)
	out := make([]CategoryCount, len(keys))
	for i, k := range keys {
		out[i] = CategoryCount{Value: k, Count: counts[k]}
	}
	return out, nil
}

// HistogramData is an equal-width histogram with an optional density curve
// scaled to counts.
type HistogramData struct {
	Column feedback.Column
	Edges  []float64 // len(Counts)+1
	Counts []int
	// KDE is empty when the column has fewer than two distinct values.
	KDEX, KDEY []float64
}

// BinWidth returns the width shared by every bin.
func (h *HistogramData) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// Total returns the number of values binned.
func (h *HistogramData) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

const kdePoints = 200

// MaxBins bounds the histogram bin count. Automatic estimates are clamped to
// it; larger explicit requests are rejected.
const MaxBins = 1000

// Histogram bins a numeric column. bins <= 0 selects the bin count
// automatically as the larger of the Sturges and Freedman-Diaconis estimates.
// The last bin is closed on the right so the maximum is counted.
func Histogram(recs []feedback.Record, col feedback.Column, bins int) (*HistogramData, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := requireNumeric([]feedback.Column{col}); err != nil {
		return nil, err
	}
	if bins > MaxBins {
		return nil, fmt.Errorf("histogram of %s: %d bins requested, limit is %d", col, bins, MaxBins)
	}
	vals := numericValues(recs, col)
	sort.Float64s(vals)
	lo, hi := vals[0], vals[len(vals)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
		if bins <= 0 {
			bins = 1
		}
	}
	if bins <= 0 {
		bins = autoBins(vals, hi-lo)
	}
	width := (hi - lo) / float64(bins)
	h := &HistogramData{Column: col, Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi
	for _, x := range vals {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		h.Counts[i]++
	}
	h.KDEX, h.KDEY = gaussianKDE(vals, width)
	return h, nil
}

func autoBins(sorted []float64, span float64) int {
	n := float64(len(sorted))
	sturges := span / (math.Log2(n) + 1)
	width := sturges
	iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}
	b := math.Ceil(span / width)
	switch {
	case math.IsNaN(b) || b < 1:
		return 1
	case b > MaxBins:
		return MaxBins
	}
	return int(b)
}

// gaussianKDE evaluates a Gaussian kernel density with Scott's bandwidth over
// the data range padded by three bandwidths, scaled so the area matches a
// histogram with the given bin width.
func gaussianKDE(sorted []float64, binWidth float64) (xs, ys []float64) {
	n := len(sorted)
	if n < 2 {
		return nil, nil
	}
	m := mean(sorted)
	var ss float64
	for _, x := range sorted {
		ss += (x - m) * (x - m)
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd == 0 {
		return nil, nil
	}
	bw := sd * math.Pow(float64(n), -0.2)
	from := sorted[0] - 3*bw
	to := sorted[n-1] + 3*bw
	step := (to - from) / float64(kdePoints-1)
	scale := float64(n) * binWidth / (float64(n) * bw * math.Sqrt(2*math.Pi))
	xs = make([]float64, kdePoints)
	ys = make([]float64, kdePoints)
	for i := 0; i < kdePoints; i++ {
		x := from + float64(i)*step
		var s float64
		for _, v := range sorted {
			z := (x - v) / bw
			s += math.Exp(-0.5 * z * z)
		}
		xs[i] = x
		ys[i] = s * scale
	}
	return xs, ys
}

// BoxGroup holds the five-number summary of one group with Tukey whiskers.
type BoxGroup struct {
	Key                   string
	N                     int
	Min, Max              float64
	Q1, Median, Q3        float64
	LowWhisker, HiWhisker float64
	Outliers              []float64
}

// BoxStats summarises value per label of by. Whiskers reach the furthest
// observations within 1.5 IQR of the quartiles; anything beyond is an outlier.
func BoxStats(recs []feedback.Record, value, by feedback.Column) ([]BoxGroup, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := requireNumeric([]feedback.Column{value}); err != nil {
		return nil, err
	}
	if !feedback.IsGroupable(by) {
		return nil, &ColumnError{Column: by, Want: "categorical"}
	}
	groups := map[string][]float64{}
	for _, r := range recs {
		k, _ := r.Label(by)
		x, _ := r.Numeric(value)
		groups[k] = append(groups[k], x)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortLabels(keys)

	out := make([]BoxGroup, 0, len(keys))
	for _, k := range keys {
		vals := groups[k]
		sort.Float64s(vals)
		g := BoxGroup{
			Key:    k,
			N:      len(vals),
			Min:    vals[0],
			Max:    vals[len(vals)-1],
			Q1:     quantile(vals, 0.25),
			Median: quantile(vals, 0.5),
			Q3:     quantile(vals, 0.75),
		}
		iqr := g.Q3 - g.Q1
		loFence, hiFence := g.Q1-1.5*iqr, g.Q3+1.5*iqr
		g.LowWhisker, g.HiWhisker = g.Q1, g.Q3
		for _, x := range vals {
			if x < loFence || x > hiFence {
				g.Outliers = append(g.Outliers, x)
				continue
			}
			if x < g.LowWhisker {
				g.LowWhisker = x
			}
			if x > g.HiWhisker {
				g.HiWhisker = x
			}
		}
		out = append(out, g)
	}
	return out, nil
}
