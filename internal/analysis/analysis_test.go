package analysis_test

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/KaramelBytes/empsent-cli/internal/testutil"
)

func records(t *testing.T) []feedback.Record {
	t.Helper()
	return testutil.SampleDataset(t).Records
}

func TestDescribe_OrderingAndKnownValues(t *testing.T) {
	stats, err := analysis.Describe(records(t), feedback.NumericColumns)
	require.NoError(t, err)
	require.Len(t, stats, len(feedback.NumericColumns))

	for _, s := range stats {
		assert.Equal(t, 8, s.Count, s.Column)
		assert.LessOrEqual(t, s.Min, s.Mean, s.Column)
		assert.LessOrEqual(t, s.Mean, s.Max, s.Column)
		assert.LessOrEqual(t, s.P25, s.P50, s.Column)
		assert.LessOrEqual(t, s.P50, s.P75, s.Column)
		assert.GreaterOrEqual(t, s.Std, 0.0, s.Column)
	}

	overall := stats[0]
	require.Equal(t, feedback.ColOverall, overall.Column)
	assert.InDelta(t, 3.5625, overall.Mean, 1e-9)
	assert.Equal(t, 2.0, overall.Min)
	assert.Equal(t, 5.0, overall.Max)
	assert.InDelta(t, 3.0, overall.P25, 1e-9)
	assert.InDelta(t, 3.75, overall.P50, 1e-9)
	assert.InDelta(t, 4.0, overall.P75, 1e-9)
}

func TestDescribe_SingleRecordHasUndefinedStd(t *testing.T) {
	stats, err := analysis.Describe(records(t)[:1], []feedback.Column{feedback.ColOverall})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(stats[0].Std))
	assert.Equal(t, stats[0].Min, stats[0].P50)
}

func TestAggregations_EmptyInput(t *testing.T) {
	_, err := analysis.Describe(nil, feedback.NumericColumns)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
	_, err = analysis.GroupMeans(nil, feedback.ColTenure, feedback.RatingColumns)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
	_, err = analysis.Correlation(nil, feedback.RatingColumns)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
	_, err = analysis.CrossTab(nil, feedback.ColEngagement, feedback.ColLocation)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
	_, err = analysis.WordFrequency(nil, feedback.ColPositives)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
	_, err = analysis.WeeklyMeans(nil, feedback.RatingColumns)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
}

func TestGroupMeans_ByTenure(t *testing.T) {
	g, err := analysis.GroupMeans(records(t), feedback.ColTenure, feedback.RatingColumns)
	require.NoError(t, err)
	require.Len(t, g.Groups, 5)

	keys := make([]string, len(g.Groups))
	total := 0
	for i, row := range g.Groups {
		keys[i] = row.Key
		total += row.Size
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, keys)
	assert.Equal(t, 8, total)

	m, ok := g.Mean("1", feedback.ColOverall)
	require.True(t, ok)
	assert.InDelta(t, 3.75, m, 1e-9)
}

func TestGroupMeans_SingletonGroupsEqualRowValues(t *testing.T) {
	recs := records(t)
	g, err := analysis.GroupMeans(recs, feedback.ColTenure, feedback.RatingColumns)
	require.NoError(t, err)
	for _, rec := range recs {
		key, _ := rec.Label(feedback.ColTenure)
		for _, row := range g.Groups {
			if row.Key != key || row.Size != 1 {
				continue
			}
			for i, f := range g.Fields {
				want, _ := rec.Numeric(f)
				assert.Equal(t, want, row.Means[i], "tenure %s %s", key, f)
			}
		}
	}
	m, _ := g.Mean("2", feedback.ColOverall)
	assert.Equal(t, 3.0, m)
	m, _ = g.Mean("4", feedback.ColOverall)
	assert.Equal(t, 2.0, m)
}

func TestGroupMeans_RejectsNonGroupableKey(t *testing.T) {
	_, err := analysis.GroupMeans(records(t), feedback.ColPositives, feedback.RatingColumns)
	var ce *analysis.ColumnError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, feedback.ColPositives, ce.Column)
}

func TestCorrelation_SymmetricWithUnitDiagonal(t *testing.T) {
	m, err := analysis.Correlation(records(t), feedback.RatingColumns)
	require.NoError(t, err)
	n := len(feedback.RatingColumns)
	require.Len(t, m.Values, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := 0; j < n; j++ {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
			assert.LessOrEqual(t, math.Abs(m.Values[i][j]), 1.0)
		}
	}
	r, ok := m.At(feedback.ColOverall, feedback.ColWorkBalance)
	require.True(t, ok)
	assert.Greater(t, r, 0.9)
}

func TestCorrelation_ZeroVarianceIsReportedNotFatal(t *testing.T) {
	recs := append([]feedback.Record(nil), records(t)...)
	for i := range recs {
		recs[i].OverallRatings = 4
	}
	m, err := analysis.Correlation(recs, feedback.RatingColumns)
	var de *analysis.DegenerateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []feedback.Column{feedback.ColOverall}, de.Columns)
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.Values[0][0])
	assert.True(t, math.IsNaN(m.Values[0][1]))
	assert.False(t, math.IsNaN(m.Values[1][2]))
}

func TestCrossTab_SumsToRecordCount(t *testing.T) {
	ct, err := analysis.CrossTab(records(t), feedback.ColEngagement, feedback.ColLocation)
	require.NoError(t, err)
	assert.Equal(t, []string{"No", "Yes"}, ct.Rows)
	assert.Equal(t, []string{"CityA", "CityB", "CityC"}, ct.Cols)
	assert.Equal(t, 8, ct.Total)

	sum := 0
	for _, row := range ct.Counts {
		for _, n := range row {
			sum += n
		}
	}
	assert.Equal(t, ct.Total, sum)
	assert.Equal(t, 2, ct.Count("Yes", "CityA"))
	assert.Equal(t, 2, ct.Count("No", "CityB"))
	assert.Equal(t, 1, ct.Count("No", "CityC"))
}

func TestWordFrequency_CaseInsensitiveCounts(t *testing.T) {
	w, err := analysis.WordFrequency(records(t), feedback.ColPositives)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Count("team"))
	assert.Equal(t, 3, w.Count("TEAM"))
	assert.Equal(t, "team", w.Top(1)[0].Term)
	assert.Len(t, w.Top(1000), len(w.Terms))

	for i := 1; i < len(w.Terms); i++ {
		prev, cur := w.Terms[i-1], w.Terms[i]
		assert.True(t, prev.Count > cur.Count || (prev.Count == cur.Count && prev.Term < cur.Term))
	}
}

func TestWordFrequency_RejectsNonText(t *testing.T) {
	_, err := analysis.WordFrequency(records(t), feedback.ColOverall)
	var ce *analysis.ColumnError
	assert.ErrorAs(t, err, &ce)
}

func TestWeekEnding(t *testing.T) {
	sunday := time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, sunday, analysis.WeekEnding(time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, sunday, analysis.WeekEnding(sunday))
	assert.Equal(t, sunday.AddDate(0, 0, 7), analysis.WeekEnding(time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)))
}

func TestWeeklyMeans_SundayBuckets(t *testing.T) {
	s, err := analysis.WeeklyMeans(records(t), feedback.RatingColumns)
	require.NoError(t, err)
	require.Len(t, s.Weeks, 4)
	for i, w := range s.Weeks {
		assert.Equal(t, time.Sunday, w.End.Weekday())
		assert.Equal(t, 2, w.Count)
		if i > 0 {
			assert.True(t, w.End.After(s.Weeks[i-1].End))
		}
	}
	assert.Equal(t, "2023-01-08", s.Weeks[0].End.Format(time.DateOnly))
	assert.InDelta(t, 3.5, s.Weeks[0].Means[0], 1e-9)

	xs, ys, ok := s.Series(feedback.ColOverall)
	require.True(t, ok)
	assert.Len(t, xs, 4)
	assert.Len(t, ys, 4)
}

func TestWeeklyMeans_EmptyWeeksAreKept(t *testing.T) {
	recs := append([]feedback.Record(nil), records(t)[:2]...)
	recs[0].FeedbackDate = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	recs[1].FeedbackDate = time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC)

	s, err := analysis.WeeklyMeans(recs, []feedback.Column{feedback.ColOverall})
	require.NoError(t, err)
	require.Len(t, s.Weeks, 3)
	assert.Equal(t, 0, s.Weeks[1].Count)
	assert.True(t, math.IsNaN(s.Weeks[1].Means[0]))
	assert.Equal(t, 1, s.Weeks[2].Count)
}

func TestValueCounts(t *testing.T) {
	counts, err := analysis.ValueCounts(records(t), feedback.ColEngagement)
	require.NoError(t, err)
	assert.Equal(t, []analysis.CategoryCount{{Value: "No", Count: 4}, {Value: "Yes", Count: 4}}, counts)
}

func TestHistogram_CountsCoverEveryRecord(t *testing.T) {
	recs := records(t)
	for _, c := range feedback.NumericColumns {
		h, err := analysis.Histogram(recs, c, 0)
		require.NoError(t, err, c)
		assert.Equal(t, len(recs), h.Total(), c)
		assert.Len(t, h.Edges, len(h.Counts)+1, c)
		assert.Len(t, h.KDEY, len(h.KDEX), c)
	}

	h, err := analysis.Histogram(recs, feedback.ColOverall, 0)
	require.NoError(t, err)
	assert.Len(t, h.Counts, 4)
	assert.InDelta(t, 0.75, h.BinWidth(), 1e-9)

	h, err = analysis.Histogram(recs, feedback.ColOverall, 6)
	require.NoError(t, err)
	assert.Len(t, h.Counts, 6)
	assert.Equal(t, 1, h.Counts[5], "maximum lands in the closed last bin")
}

func TestHistogram_ConstantColumn(t *testing.T) {
	recs := append([]feedback.Record(nil), records(t)...)
	for i := range recs {
		recs[i].OverallRatings = 4
	}
	h, err := analysis.Histogram(recs, feedback.ColOverall, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, h.Counts)
	assert.Empty(t, h.KDEX)
}

func TestHistogram_TenureOutlierKeepsBinsBounded(t *testing.T) {
	recs := append([]feedback.Record(nil), records(t)...)
	recs[0].Tenure = 50_000_000

	h, err := analysis.Histogram(recs, feedback.ColTenure, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(h.Counts), analysis.MaxBins)
	assert.Equal(t, len(recs), h.Total())

	recs[0].Tenure = 5_000_000_000_000_000
	h, err = analysis.Histogram(recs, feedback.ColTenure, 0)
	require.NoError(t, err)
	assert.Len(t, h.Counts, analysis.MaxBins)
	assert.Equal(t, len(recs), h.Total())
}

func TestHistogram_RejectsTooManyBins(t *testing.T) {
	_, err := analysis.Histogram(records(t), feedback.ColOverall, analysis.MaxBins+1)
	assert.ErrorContains(t, err, "limit is")
}

func TestBuild_ExtremeTenureStillBuilds(t *testing.T) {
	ds := testutil.SampleDataset(t)
	recs := append([]feedback.Record(nil), ds.Records...)
	recs[3].Tenure = 5_000_000_000_000_000
	ds.Records = recs

	rep := analysis.Build(ds, analysis.DefaultOptions())
	require.Len(t, rep.Distributions, len(feedback.NumericColumns))
	for _, d := range rep.Distributions {
		assert.LessOrEqual(t, len(d.Counts), analysis.MaxBins, d.Column)
	}

	opt := analysis.DefaultOptions()
	opt.HistogramBins = analysis.MaxBins * 10
	rep = analysis.Build(ds, opt)
	assert.Empty(t, rep.Distributions)
	require.NotEmpty(t, rep.Warnings)
	assert.Contains(t, rep.Warnings[0], "distribution of")
}

func TestMarkdown_HeadTruncatesByRune(t *testing.T) {
	ds := testutil.SampleDataset(t)
	recs := append([]feedback.Record(nil), ds.Records...)
	recs[0].CommentPositives = strings.Repeat("é", 120)
	ds.Records = recs

	md := analysis.Build(ds, analysis.DefaultOptions()).Markdown()
	assert.True(t, utf8.ValidString(md))
	assert.Contains(t, md, strings.Repeat("é", 77)+"...")
	assert.NotContains(t, md, strings.Repeat("é", 78))
}

func TestBoxStats_WhiskersWithinRange(t *testing.T) {
	groups, err := analysis.BoxStats(records(t), feedback.ColTenure, feedback.ColEngagement)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.LessOrEqual(t, g.Min, g.LowWhisker)
		assert.LessOrEqual(t, g.LowWhisker, g.Q1)
		assert.LessOrEqual(t, g.Q1, g.Median)
		assert.LessOrEqual(t, g.Median, g.Q3)
		assert.LessOrEqual(t, g.Q3, g.HiWhisker)
		assert.LessOrEqual(t, g.HiWhisker, g.Max)
	}
	yes := groups[1]
	assert.Equal(t, "Yes", yes.Key)
	assert.InDelta(t, 2.5, yes.Q1, 1e-9)
	assert.InDelta(t, 3.0, yes.Median, 1e-9)
	assert.InDelta(t, 3.5, yes.Q3, 1e-9)
	assert.Empty(t, yes.Outliers)
}

func TestBuild_EndToEnd(t *testing.T) {
	ds := testutil.SampleDataset(t)
	rep := analysis.Build(ds, analysis.DefaultOptions())

	assert.Empty(t, rep.Warnings)
	assert.Equal(t, 10, rep.RowsRead)
	assert.Equal(t, 8, rep.Records)
	assert.Equal(t, 2, rep.Duplicates)
	assert.Len(t, rep.Head, 5)
	assert.Len(t, rep.Summary, len(feedback.NumericColumns))
	assert.Len(t, rep.Distributions, len(feedback.NumericColumns))
	assert.Len(t, rep.CountPlots, 2)
	assert.Len(t, rep.Boxes, 2)
	require.Len(t, rep.GroupBy, 3)
	assert.Len(t, rep.GroupBy[0].Groups, 5)
	require.Len(t, rep.Words, 3)
	assert.Equal(t, 3, rep.Words[0].Count("team"))
	require.NotNil(t, rep.Corr)
	require.NotNil(t, rep.Cross)
	require.NotNil(t, rep.Weekly)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "Unique records: 8", "Duplicates removed: 2",
		"[DESCRIBE]", "[CORRELATIONS]", "[AVERAGE RATINGS BY EMPLOYEE_TENURE]",
		"[TOP WORDS]", "team(3)", "week ending 2023-01-08",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[NOTES]")
}

func TestBuild_EmptyDatasetBecomesWarnings(t *testing.T) {
	rep := analysis.Build(&feedback.Dataset{Name: "empty.csv"}, analysis.DefaultOptions())
	assert.NotEmpty(t, rep.Warnings)
	assert.Nil(t, rep.Corr)
	assert.Nil(t, rep.Weekly)
	for _, w := range rep.Warnings {
		assert.Contains(t, w, analysis.ErrNoRecords.Error())
	}
	assert.True(t, strings.Contains(rep.Markdown(), "[NOTES]"))
}

func TestBuild_DegenerateCorrelationKeepsMatrix(t *testing.T) {
	ds := testutil.SampleDataset(t)
	recs := append([]feedback.Record(nil), ds.Records...)
	for i := range recs {
		recs[i].RemoteWorkSatisfaction = 3
	}
	ds.Records = recs
	rep := analysis.Build(ds, analysis.DefaultOptions())
	require.NotNil(t, rep.Corr)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "zero variance")
}

func TestWriteXLSX(t *testing.T) {
	rep := analysis.Build(testutil.SampleDataset(t), analysis.DefaultOptions())
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, analysis.WriteXLSX(rep, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Describe", "Correlation", "By Tenure", "By Engagement", "By Location", "CrossTab", "Words", "Weekly"}, f.GetSheetList())

	rows, err := f.GetRows("Describe")
	require.NoError(t, err)
	require.Len(t, rows, len(feedback.NumericColumns)+1)
	assert.Equal(t, "column", rows[0][0])
	assert.Equal(t, string(feedback.ColOverall), rows[1][0])

	rows, err = f.GetRows("By Tenure")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestWriteXLSX_NoTables(t *testing.T) {
	rep := analysis.Build(&feedback.Dataset{}, analysis.DefaultOptions())
	err := analysis.WriteXLSX(rep, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.Error(t, err)
}
