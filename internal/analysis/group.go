package analysis

import (
	"sort"
	"strconv"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// GroupTable holds per-group means of Fields, one row per distinct key value.
type GroupTable struct {
	Key    feedback.Column
	Fields []feedback.Column
	Groups []GroupRow
}

// GroupRow is one group; Means is aligned with GroupTable.Fields.
type GroupRow struct {
	Key   string
	Size  int
	Means []float64
}

// Mean returns the mean of field for the group with the given key.
func (t *GroupTable) Mean(key string, field feedback.Column) (float64, bool) {
	fi := -1
	for i, f := range t.Fields {
		if f == field {
			fi = i
			break
		}
	}
	if fi < 0 {
		return 0, false
	}
	for _, g := range t.Groups {
		if g.Key == key {
			return g.Means[fi], true
		}
	}
	return 0, false
}

// GroupMeans groups records by key (tenure, engagement or location) and
// averages each field within a group. Groups are ordered by key; tenure sorts
// numerically.
func GroupMeans(recs []feedback.Record, key feedback.Column, fields []feedback.Column) (*GroupTable, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if !feedback.IsGroupable(key) {
		return nil, &ColumnError{Column: key, Want: "a grouping key"}
	}
	if err := requireNumeric(fields); err != nil {
		return nil, err
	}

	type acc struct {
		size int
		sum  []float64
	}
	groups := map[string]*acc{}
	for _, r := range recs {
		k, _ := r.Label(key)
		a := groups[k]
		if a == nil {
			a = &acc{sum: make([]float64, len(fields))}
			groups[k] = a
		}
		a.size++
		for i, f := range fields {
			x, _ := r.Numeric(f)
			a.sum[i] += x
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortLabels(keys)

	t := &GroupTable{Key: key, Fields: append([]feedback.Column(nil), fields...)}
	for _, k := range keys {
		a := groups[k]
		row := GroupRow{Key: k, Size: a.size, Means: make([]float64, len(fields))}
		for i := range fields {
			row.Means[i] = a.sum[i] / float64(a.size)
		}
		t.Groups = append(t.Groups, row)
	}
	return t, nil
}

// sortLabels orders numerically when every label is an integer, lexically otherwise.
func sortLabels(keys []string) {
	numeric := true
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		return
	}
	sort.Strings(keys)
}
