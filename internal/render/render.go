// Package render turns a report into PNG charts.
package render

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/KaramelBytes/empsent-cli/internal/manifest"
	"github.com/KaramelBytes/empsent-cli/internal/utils"
)

// ChartsDir is the subdirectory of the output directory holding PNGs.
const ChartsDir = "charts"

// Options sizes the charts.
type Options struct {
	Width, Height     int
	WordCloudMaxWords int
}

// DefaultOptions returns 1000x600 charts and 200-word clouds.
func DefaultOptions() Options {
	return Options{Width: 1000, Height: 600, WordCloudMaxWords: 200}
}

// Renderer draws every chart of a report in a fixed order.
type Renderer struct {
	opt Options
	log *slog.Logger
}

// New returns a Renderer. A nil logger uses slog.Default().
func New(opt Options, log *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opt.Width <= 0 {
		opt.Width = def.Width
	}
	if opt.Height <= 0 {
		opt.Height = def.Height
	}
	if opt.WordCloudMaxWords <= 0 {
		opt.WordCloudMaxWords = def.WordCloudMaxWords
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{opt: opt, log: log}
}

// job is one planned chart. draw is nil when the report section it needs is
// missing.
type job struct {
	file  string
	title string
	draw  func() ([]byte, error)
}

// RenderAll writes every chart under <m.RootDir()>/charts and records each one
// in m, either as an artifact or as skipped. A failing chart never stops the
// others.
func (r *Renderer) RenderAll(rep *analysis.Report, m *manifest.Manifest) ([]manifest.Artifact, []manifest.Skipped) {
	dir := filepath.Join(m.RootDir(), ChartsDir)
	var arts []manifest.Artifact
	var skipped []manifest.Skipped
	skip := func(title, reason string) {
		r.log.Warn("chart skipped", "chart", title, "reason", reason)
		m.Skip(title, reason)
		skipped = append(skipped, manifest.Skipped{Chart: title, Reason: reason})
	}
	if err := utils.EnsureDir(dir); err != nil {
		for _, j := range r.plan(rep) {
			skip(j.title, err.Error())
		}
		return nil, skipped
	}

	for _, j := range r.plan(rep) {
		if j.draw == nil {
			skip(j.title, "aggregation unavailable")
			continue
		}
		b, err := j.draw()
		if err != nil {
			skip(j.title, err.Error())
			continue
		}
		path := filepath.Join(dir, j.file)
		if err := utils.SafeWriteFile(path, b); err != nil {
			skip(j.title, err.Error())
			continue
		}
		a, err := m.AddFile(path, manifest.KindChart, j.title)
		if err != nil {
			skip(j.title, err.Error())
			continue
		}
		r.log.Debug("chart written", "chart", j.title, "path", a.Path, "bytes", a.Bytes)
		arts = append(arts, a)
	}
	return arts, skipped
}

// plan lists the charts of a report in presentation order.
func (r *Renderer) plan(rep *analysis.Report) []job {
	w, h := r.opt.Width, r.opt.Height
	var jobs []job

	hists := map[feedback.Column]*analysis.HistogramData{}
	for _, d := range rep.Distributions {
		hists[d.Column] = d
	}
	for _, col := range feedback.NumericColumns {
		j := job{file: "hist_" + slug(string(col)) + ".png", title: "Distribution of " + string(col)}
		if d, ok := hists[col]; ok {
			j.draw = func() ([]byte, error) { return histogram(j.title, d, w, h) }
		}
		jobs = append(jobs, j)
	}

	counts := map[feedback.Column]analysis.CountPlot{}
	for _, cp := range rep.CountPlots {
		counts[cp.Column] = cp
	}
	for _, col := range feedback.CategoricalColumns {
		j := job{file: "count_" + slug(string(col)) + ".png", title: "Count Plot of " + string(col)}
		if cp, ok := counts[col]; ok {
			j.draw = func() ([]byte, error) { return countPlot(j.title, string(col), cp.Counts, w, h) }
		}
		jobs = append(jobs, j)
	}

	corr := job{file: "correlation_matrix.png", title: "Correlation Matrix of Employee Ratings"}
	if m := rep.Corr; m != nil {
		corr.draw = func() ([]byte, error) {
			names := columnNames(m.Columns)
			return heatmap{Title: corr.title, Rows: names, Cols: names, Values: m.Values,
				Format: "%.2f", Lo: -1, Hi: 1, Cmap: coolwarm}.render(w, h)
		}
	}
	jobs = append(jobs, corr)

	groups := map[feedback.Column]*analysis.GroupTable{}
	for _, g := range rep.GroupBy {
		groups[g.Key] = g
	}
	for _, gk := range []struct {
		key   feedback.Column
		file  string
		title string
	}{
		{feedback.ColTenure, "ratings_by_tenure.png", "Average Ratings by Employee Tenure"},
		{feedback.ColEngagement, "ratings_by_engagement.png", "Average Ratings by Participation in Engagement Activities"},
		{feedback.ColLocation, "ratings_by_location.png", "Average Ratings by Location"},
	} {
		j := job{file: gk.file, title: gk.title}
		if g, ok := groups[gk.key]; ok {
			key := gk.key
			j.draw = func() ([]byte, error) {
				rows := make([]string, len(g.Groups))
				vals := make([][]float64, len(g.Groups))
				for i, row := range g.Groups {
					rows[i] = row.Key
					vals[i] = row.Means
				}
				lo, hi := rangeOf(vals)
				return heatmap{Title: j.title, YLabel: string(key), Rows: rows, Cols: columnNames(g.Fields),
					Values: vals, Format: "%.2f", Lo: lo, Hi: hi, Cmap: coolwarm}.render(w, h)
			}
		}
		jobs = append(jobs, j)
	}

	freq := job{file: "frequency_plot.png", title: "Frequency Plot"}
	if ct := rep.Cross; ct != nil {
		freq.draw = func() ([]byte, error) {
			vals := make([][]float64, len(ct.Rows))
			for i := range ct.Rows {
				vals[i] = make([]float64, len(ct.Cols))
				for k, n := range ct.Counts[i] {
					vals[i][k] = float64(n)
				}
			}
			_, hi := rangeOf(vals)
			return heatmap{Title: freq.title, XLabel: string(ct.ColKey), YLabel: string(ct.RowKey),
				Rows: ct.Rows, Cols: ct.Cols, Values: vals, Format: "%.0f", Lo: 0, Hi: hi, Cmap: blues}.render(w, h)
		}
	}
	jobs = append(jobs, freq)

	boxes := map[feedback.Column]analysis.BoxPlot{}
	for _, b := range rep.Boxes {
		boxes[b.By] = b
	}
	for _, bk := range []struct {
		by    feedback.Column
		file  string
		title string
	}{
		{feedback.ColEngagement, "tenure_by_engagement.png", "Employee Tenure by Engagement Activity Participation"},
		{feedback.ColLocation, "tenure_by_location.png", "Employee Tenure by Location"},
	} {
		j := job{file: bk.file, title: bk.title}
		if b, ok := boxes[bk.by]; ok {
			j.draw = func() ([]byte, error) { return boxPlot(j.title, string(b.By), string(b.Value), b.Groups, w, h) }
		}
		jobs = append(jobs, j)
	}

	words := map[feedback.Column]*analysis.WordCounts{}
	for _, wc := range rep.Words {
		words[wc.Field] = wc
	}
	for _, wk := range []struct {
		field feedback.Column
		file  string
		title string
	}{
		{feedback.ColPositives, "wordcloud_positive.png", "Common Words in Positive Comments"},
		{feedback.ColNegatives, "wordcloud_negative.png", "Common Words in Negative Comments"},
		{feedback.ColAdvice, "wordcloud_advice.png", "Common Words in Advice To Mgmt"},
	} {
		j := job{file: wk.file, title: wk.title}
		if wc, ok := words[wk.field]; ok {
			j.draw = func() ([]byte, error) {
				b, n, err := wordCloud(j.title, wc.Top(r.opt.WordCloudMaxWords), w, h)
				if err == nil {
					r.log.Debug("word cloud placed", "chart", j.title, "words", n)
				}
				return b, err
			}
		}
		jobs = append(jobs, j)
	}

	for _, col := range feedback.RatingColumns {
		j := job{file: "weekly_" + slug(string(col)) + ".png", title: fmt.Sprintf("Average %s (Weekly)", col)}
		if rep.Weekly != nil {
			if xs, ys, ok := rep.Weekly.Series(col); ok {
				j.draw = func() ([]byte, error) { return weeklyLine(j.title, xs, ys, w, h) }
			}
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func columnNames(cols []feedback.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
