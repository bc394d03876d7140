package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// ErrNoRecords is returned by every aggregation over an empty record set.
var ErrNoRecords = errors.New("no records to aggregate")

// ColumnError reports a column that cannot serve the requested aggregation.
type ColumnError struct {
	Column feedback.Column
	Want   string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %s is not %s", e.Column, e.Want)
}

// ColumnStats is the describe() row for one numeric column.
type ColumnStats struct {
	Column        feedback.Column
	Count         int
	Mean          float64
	Std           float64
	Min           float64
	P25, P50, P75 float64
	Max           float64
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for each numeric column.
func Describe(recs []feedback.Record, cols []feedback.Column) ([]ColumnStats, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := requireNumeric(cols); err != nil {
		return nil, err
	}
	out := make([]ColumnStats, 0, len(cols))
	for _, c := range cols {
		vals := numericValues(recs, c)
		s := ColumnStats{Column: c, Count: len(vals), Min: math.Inf(1), Max: math.Inf(-1)}
		// Welford update
		var m2 float64
		for i, x := range vals {
			if x < s.Min {
				s.Min = x
			}
			if x > s.Max {
				s.Max = x
			}
			delta := x - s.Mean
			s.Mean += delta / float64(i+1)
			m2 += delta * (x - s.Mean)
		}
		if s.Count > 1 {
			s.Std = math.Sqrt(m2 / float64(s.Count-1))
		} else {
			s.Std = math.NaN()
		}
		sort.Float64s(vals)
		s.P25 = quantile(vals, 0.25)
		s.P50 = quantile(vals, 0.5)
		s.P75 = quantile(vals, 0.75)
		out = append(out, s)
	}
	return out, nil
}

// numericValues returns a fresh slice; callers may sort it.
func numericValues(recs []feedback.Record, c feedback.Column) []float64 {
	vals := make([]float64, 0, len(recs))
	for _, r := range recs {
		if x, ok := r.Numeric(c); ok {
			vals = append(vals, x)
		}
	}
	return vals
}

func requireNumeric(cols []feedback.Column) error {
	for _, c := range cols {
		if !feedback.IsNumeric(c) {
			return &ColumnError{Column: c, Want: "numeric"}
		}
	}
	return nil
}

// quantile uses linear interpolation between closest ranks on sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
