package analysis

import "github.com/KaramelBytes/empsent-cli/internal/feedback"

// CrossTable is a contingency table of co-occurrence counts.
type CrossTable struct {
	RowKey, ColKey feedback.Column
	Rows, Cols     []string
	Counts         [][]int // Counts[row][col]
	Total          int
}

// Count returns the cell for a row/column label pair.
func (t *CrossTable) Count(row, col string) int {
	for i, r := range t.Rows {
		if r != row {
			continue
		}
		for j, c := range t.Cols {
			if c == col {
				return t.Counts[i][j]
			}
		}
	}
	return 0
}

// CrossTab counts records for every (rowKey, colKey) label pair. Labels are
// sorted the same way as group keys.
func CrossTab(recs []feedback.Record, rowKey, colKey feedback.Column) (*CrossTable, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	for _, k := range []feedback.Column{rowKey, colKey} {
		if !feedback.IsGroupable(k) {
			return nil, &ColumnError{Column: k, Want: "categorical"}
		}
	}
	type pair struct{ r, c string }
	cells := map[pair]int{}
	rowSet, colSet := map[string]struct{}{}, map[string]struct{}{}
	for _, rec := range recs {
		r, _ := rec.Label(rowKey)
		c, _ := rec.Label(colKey)
		cells[pair{r, c}]++
		rowSet[r] = struct{}{}
		colSet[c] = struct{}{}
	}
	t := &CrossTable{RowKey: rowKey, ColKey: colKey, Rows: keysOf(rowSet), Cols: keysOf(colSet)}
	t.Counts = make([][]int, len(t.Rows))
	for i, r := range t.Rows {
		t.Counts[i] = make([]int, len(t.Cols))
		for j, c := range t.Cols {
			t.Counts[i][j] = cells[pair{r, c}]
			t.Total += t.Counts[i][j]
		}
	}
	return t, nil
}

func keysOf(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sortLabels(out)
	return out
}
