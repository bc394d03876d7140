package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// Options controls the report sections that take parameters.
type Options struct {
	// HistogramBins is the bin count for distribution plots; 0 picks automatically.
	HistogramBins int
	// TopWords limits the terms listed per text column in the summary.
	TopWords int
	// HeadRows is the number of leading records included in the summary.
	HeadRows int
}

// DefaultOptions returns the defaults used by the report command.
func DefaultOptions() Options {
	return Options{
		HistogramBins: 0,
		TopWords:      10,
		HeadRows:      5,
	}
}

// CountPlot is the bar data for one categorical column.
type CountPlot struct {
	Column feedback.Column
	Counts []CategoryCount
}

// BoxPlot is the per-group distribution of Value split by By.
type BoxPlot struct {
	Value, By feedback.Column
	Groups    []BoxGroup
}

// Report collects every derived view of a dataset in presentation order.
// A nil or missing section means its aggregation failed; see Warnings.
type Report struct {
	Name           string
	RowsRead       int
	Records        int
	Duplicates     int
	DroppedMissing int
	Missing        map[feedback.Column]int
	Head           []feedback.Record

	Summary       []ColumnStats
	Distributions []*HistogramData
	CountPlots    []CountPlot
	Corr          *CorrMatrix
	GroupBy       []*GroupTable
	Cross         *CrossTable
	Boxes         []BoxPlot
	Words         []*WordCounts
	Weekly        *WeeklySeries

	Warnings []string
	topWords int
}

// Build runs the fixed sequence of aggregations over a loaded dataset.
// Aggregation failures are recorded as warnings and never abort the build.
func Build(ds *feedback.Dataset, opt Options) *Report {
	recs := ds.Records
	r := &Report{
		Name:           ds.Name,
		RowsRead:       ds.RowsRead,
		Records:        ds.Len(),
		Duplicates:     ds.Duplicates,
		DroppedMissing: ds.DroppedMissing,
		Missing:        ds.Missing,
		Head:           ds.Head(opt.HeadRows),
		topWords:       opt.TopWords,
	}
	warn := func(what string, err error) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", what, err))
	}

	if s, err := Describe(recs, feedback.NumericColumns); err != nil {
		warn("summary statistics", err)
	} else {
		r.Summary = s
	}

	for _, c := range feedback.NumericColumns {
		h, err := Histogram(recs, c, opt.HistogramBins)
		if err != nil {
			warn("distribution of "+string(c), err)
			continue
		}
		r.Distributions = append(r.Distributions, h)
	}

	for _, c := range feedback.CategoricalColumns {
		counts, err := ValueCounts(recs, c)
		if err != nil {
			warn("count plot of "+string(c), err)
			continue
		}
		r.CountPlots = append(r.CountPlots, CountPlot{Column: c, Counts: counts})
	}

	m, err := Correlation(recs, feedback.RatingColumns)
	var degenerate *DegenerateError
	switch {
	case errors.As(err, &degenerate):
		warn("correlation matrix", err)
		r.Corr = m
	case err != nil:
		warn("correlation matrix", err)
	default:
		r.Corr = m
	}

	for _, key := range []feedback.Column{feedback.ColTenure, feedback.ColEngagement, feedback.ColLocation} {
		g, err := GroupMeans(recs, key, feedback.RatingColumns)
		if err != nil {
			warn("average ratings by "+string(key), err)
			continue
		}
		r.GroupBy = append(r.GroupBy, g)
	}

	if ct, err := CrossTab(recs, feedback.ColEngagement, feedback.ColLocation); err != nil {
		warn("frequency plot", err)
	} else {
		r.Cross = ct
	}

	for _, by := range feedback.CategoricalColumns {
		b, err := BoxStats(recs, feedback.ColTenure, by)
		if err != nil {
			warn("tenure by "+string(by), err)
			continue
		}
		r.Boxes = append(r.Boxes, BoxPlot{Value: feedback.ColTenure, By: by, Groups: b})
	}

	for _, c := range feedback.TextColumns {
		w, err := WordFrequency(recs, c)
		if err != nil {
			warn("word frequency of "+string(c), err)
			continue
		}
		r.Words = append(r.Words, w)
	}

	if ws, err := WeeklyMeans(recs, feedback.RatingColumns); err != nil {
		warn("weekly averages", err)
	} else {
		r.Weekly = ws
	}
	return r
}

// Markdown renders the report as a plain-text summary with bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows read: %d\n", r.RowsRead))
	b.WriteString(fmt.Sprintf("Unique records: %d\n", r.Records))
	b.WriteString(fmt.Sprintf("Duplicates removed: %d\n", r.Duplicates))
	if r.DroppedMissing > 0 {
		b.WriteString(fmt.Sprintf("Rows dropped for missing values: %d\n", r.DroppedMissing))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(feedback.Schema)))

	b.WriteString("\n[MISSING VALUES]\n")
	for _, c := range feedback.Schema {
		b.WriteString(fmt.Sprintf("- %s: %d\n", c, r.Missing[c]))
	}

	if len(r.Head) > 0 {
		b.WriteString("\n[HEAD]\n")
		writeHead(&b, r.Head)
	}

	if len(r.Summary) > 0 {
		b.WriteString("\n[DESCRIBE]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Summary {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				s.Column, s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max)))
		}
	}

	if len(r.CountPlots) > 0 {
		b.WriteString("\n[VALUE COUNTS]\n")
		for _, cp := range r.CountPlots {
			b.WriteString(fmt.Sprintf("- %s: ", cp.Column))
			for i, kv := range cp.Counts {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			b.WriteString("\n")
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B feedback.Column
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := r.Corr.Values[i][j]; !math.IsNaN(v) {
					pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: v})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		maxp := 10
		if len(pairs) < maxp {
			maxp = len(pairs)
		}
		for i := 0; i < maxp; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
	}

	for _, g := range r.GroupBy {
		b.WriteString(fmt.Sprintf("\n[AVERAGE RATINGS BY %s]\n", strings.ToUpper(string(g.Key))))
		for _, row := range g.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", row.Key, row.Size))
			for i, f := range g.Fields {
				b.WriteString(fmt.Sprintf("  • %s: %.3g\n", f, row.Means[i]))
			}
		}
	}

	if r.Cross != nil {
		b.WriteString(fmt.Sprintf("\n[CROSS-TAB %s x %s]\n", r.Cross.RowKey, r.Cross.ColKey))
		b.WriteString("| " + string(r.Cross.RowKey) + " | " + strings.Join(r.Cross.Cols, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(r.Cross.Cols)+1) + "\n")
		for i, row := range r.Cross.Rows {
			cells := make([]string, len(r.Cross.Cols))
			for j := range r.Cross.Cols {
				cells[j] = fmt.Sprintf("%d", r.Cross.Counts[i][j])
			}
			b.WriteString("| " + row + " | " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString(fmt.Sprintf("Total: %d\n", r.Cross.Total))
	}

	for _, bp := range r.Boxes {
		b.WriteString(fmt.Sprintf("\n[%s BY %s]\n", strings.ToUpper(string(bp.Value)), strings.ToUpper(string(bp.By))))
		for _, g := range bp.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d): median %.3g, IQR %.3g-%.3g, whiskers %.3g-%.3g",
				g.Key, g.N, g.Median, g.Q1, g.Q3, g.LowWhisker, g.HiWhisker))
			if len(g.Outliers) > 0 {
				b.WriteString(fmt.Sprintf(", outliers %d", len(g.Outliers)))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Words) > 0 {
		b.WriteString("\n[TOP WORDS]\n")
		for _, w := range r.Words {
			b.WriteString(fmt.Sprintf("- %s (%d tokens): ", w.Field, w.Tokens))
			for i, tc := range w.Top(r.topWords) {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(tc.Term), tc.Count))
			}
			b.WriteString("\n")
		}
	}

	if r.Weekly != nil && len(r.Weekly.Weeks) > 0 {
		b.WriteString("\n[WEEKLY AVERAGES]\n")
		fi := 0 // overall rating leads the rating columns
		for _, w := range r.Weekly.Weeks {
			b.WriteString(fmt.Sprintf("- week ending %s: n=%d, %s %s\n",
				w.End.Format(time.DateOnly), w.Count, r.Weekly.Fields[fi], num(w.Means[fi])))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeHead(b *strings.Builder, recs []feedback.Record) {
	cols := []feedback.Column{feedback.ColID, feedback.ColOverall, feedback.ColEngagement,
		feedback.ColTenure, feedback.ColLocation, feedback.ColFeedbackDate, feedback.ColPositives}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	b.WriteString("| " + strings.Join(names, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, rec := range recs {
		val := rec.CommentPositives
		if r := []rune(val); len(r) > 80 {
			val = string(r[:77]) + "..."
		}
		b.WriteString(fmt.Sprintf("| %d | %g | %s | %d | %s | %s | %s |\n",
			rec.ID, rec.OverallRatings, rec.Engagement, rec.Tenure, safeVal(rec.Location),
			rec.FeedbackDate.Format(time.DateOnly), safeVal(val)))
	}
}

// num formats a statistic, printing NaN as a dash.
func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
