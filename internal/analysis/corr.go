package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []feedback.Column
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the coefficient for a pair of columns.
func (m *CorrMatrix) At(a, b feedback.Column) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// DegenerateError lists zero-variance columns whose correlations are undefined.
type DegenerateError struct {
	Columns []feedback.Column
}

func (e *DegenerateError) Error() string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = string(c)
	}
	return fmt.Sprintf("zero variance in %s: correlation undefined", strings.Join(names, ", "))
}

// Correlation computes the pairwise Pearson matrix over fields. The diagonal
// is always 1. When a column has zero variance its off-diagonal entries are
// NaN and the matrix is returned together with a *DegenerateError.
func Correlation(recs []feedback.Record, fields []feedback.Column) (*CorrMatrix, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if err := requireNumeric(fields); err != nil {
		return nil, err
	}
	n := len(fields)
	cols := make([][]float64, n)
	means := make([]float64, n)
	for i, f := range fields {
		cols[i] = numericValues(recs, f)
		means[i] = mean(cols[i])
	}
	// centered sums of squares
	ss := make([]float64, n)
	for i := range fields {
		for _, x := range cols[i] {
			d := x - means[i]
			ss[i] += d * d
		}
	}

	m := &CorrMatrix{Columns: append([]feedback.Column(nil), fields...), Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	var degenerate []feedback.Column
	for i := range fields {
		if ss[i] == 0 {
			degenerate = append(degenerate, fields[i])
		}
	}
	for a := 0; a < n; a++ {
		m.Values[a][a] = 1
		for b := a + 1; b < n; b++ {
			r := math.NaN()
			if ss[a] > 0 && ss[b] > 0 {
				var sxy float64
				for k := range cols[a] {
					sxy += (cols[a][k] - means[a]) * (cols[b][k] - means[b])
				}
				r = sxy / math.Sqrt(ss[a]*ss[b])
				if r > 1 {
					r = 1
				} else if r < -1 {
					r = -1
				}
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	if len(degenerate) > 0 {
		return m, &DegenerateError{Columns: degenerate}
	}
	return m, nil
}
