// Package console prints report sections as terminal tables.
package console

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

var title = color.New(color.FgYellow, color.Bold)

// Printer writes titled tables to w.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) section(s string) {
	title.Fprintf(p.w, "\n%s\n", s)
}

func (p *Printer) table(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(p.w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	return t
}

// Dataset prints load counters.
func (p *Printer) Dataset(ds *feedback.Dataset) {
	p.section("Dataset " + ds.Name)
	t := p.table([]string{"Rows read", "Unique records", "Duplicates", "Dropped (missing)"})
	t.Append([]string{strconv.Itoa(ds.RowsRead), strconv.Itoa(ds.Len()), strconv.Itoa(ds.Duplicates), strconv.Itoa(ds.DroppedMissing)})
	t.Render()
}

// Head prints the leading records with every column.
func (p *Printer) Head(recs []feedback.Record) {
	p.section("First records")
	header := make([]string, len(feedback.Schema))
	for i, c := range feedback.Schema {
		header[i] = string(c)
	}
	t := p.table(header)
	for _, r := range recs {
		row := make([]string, len(feedback.Schema))
		for i, c := range feedback.Schema {
			row[i] = cellText(r, c)
		}
		t.Append(row)
	}
	t.Render()
}

// Describe prints the summary statistics table.
func (p *Printer) Describe(stats []analysis.ColumnStats) {
	p.section("Summary statistics")
	t := p.table([]string{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, s := range stats {
		t.Append([]string{string(s.Column), strconv.Itoa(s.Count), num(s.Mean), num(s.Std),
			num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max)})
	}
	t.Render()
}

// GroupMeans prints one row per group with the mean of each field.
func (p *Printer) GroupMeans(g *analysis.GroupTable) {
	p.section("Average ratings by " + string(g.Key))
	header := []string{string(g.Key), "n"}
	for _, f := range g.Fields {
		header = append(header, string(f))
	}
	t := p.table(header)
	for _, row := range g.Groups {
		cells := []string{row.Key, strconv.Itoa(row.Size)}
		for _, m := range row.Means {
			cells = append(cells, num(m))
		}
		t.Append(cells)
	}
	t.Render()
}

// Correlation prints the matrix with two-decimal coefficients.
func (p *Printer) Correlation(m *analysis.CorrMatrix) {
	p.section("Correlation matrix")
	header := []string{""}
	for _, c := range m.Columns {
		header = append(header, string(c))
	}
	t := p.table(header)
	for i, c := range m.Columns {
		row := []string{string(c)}
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		t.Append(row)
	}
	t.Render()
}

// CrossTab prints the contingency table with a total footer.
func (p *Printer) CrossTab(ct *analysis.CrossTable) {
	p.section(fmt.Sprintf("%s x %s", ct.RowKey, ct.ColKey))
	t := p.table(append([]string{string(ct.RowKey)}, ct.Cols...))
	for i, r := range ct.Rows {
		row := []string{r}
		for _, n := range ct.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.Append(row)
	}
	footer := make([]string, len(ct.Cols)+1)
	footer[0] = "Total " + strconv.Itoa(ct.Total)
	t.SetFooter(footer)
	t.Render()
}

// Words prints the n most frequent terms.
func (p *Printer) Words(w *analysis.WordCounts, n int) {
	p.section(fmt.Sprintf("Top words in %s (%d tokens)", w.Field, w.Tokens))
	t := p.table([]string{"Rank", "Term", "Count"})
	for i, tc := range w.Top(n) {
		t.Append([]string{strconv.Itoa(i + 1), tc.Term, strconv.Itoa(tc.Count)})
	}
	t.Render()
}

// Weekly prints one row per week ending Sunday.
func (p *Printer) Weekly(s *analysis.WeeklySeries) {
	p.section("Weekly averages")
	header := []string{"Week ending", "n"}
	for _, f := range s.Fields {
		header = append(header, string(f))
	}
	t := p.table(header)
	for _, w := range s.Weeks {
		row := []string{w.End.Format(time.DateOnly), strconv.Itoa(w.Count)}
		for _, m := range w.Means {
			row = append(row, num(m))
		}
		t.Append(row)
	}
	t.Render()
}

// Warnings prints aggregation warnings in red, if any.
func (p *Printer) Warnings(ws []string) {
	for _, w := range ws {
		color.New(color.FgRed).Fprintf(p.w, "⚠ %s\n", w)
	}
}

func cellText(r feedback.Record, c feedback.Column) string {
	if s, ok := r.Text(c); ok {
		return s
	}
	if c == feedback.ColFeedbackDate {
		return r.FeedbackDate.Format(time.DateOnly)
	}
	if s, ok := r.Label(c); ok {
		return s
	}
	if c == feedback.ColID {
		return strconv.Itoa(r.ID)
	}
	v, _ := r.Numeric(c)
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
