package render

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/KaramelBytes/empsent-cli/internal/logging"
	"github.com/KaramelBytes/empsent-cli/internal/manifest"
	"github.com/KaramelBytes/empsent-cli/internal/testutil"
)

const expectedCharts = 31

func testRenderer() *Renderer {
	return New(Options{Width: 640, Height: 400, WordCloudMaxWords: 50}, logging.Discard())
}

func TestRenderAll_WritesEveryChart(t *testing.T) {
	rep := analysis.Build(testutil.SampleDataset(t), analysis.DefaultOptions())
	m := manifest.New("sample.csv", t.TempDir())

	arts, skipped := testRenderer().RenderAll(rep, m)
	require.Empty(t, skipped)
	require.Len(t, arts, expectedCharts)
	assert.Len(t, m.Charts(), expectedCharts)

	titles := map[string]bool{}
	for _, a := range arts {
		titles[a.Title] = true
		b, err := os.ReadFile(filepath.Join(m.RootDir(), filepath.FromSlash(a.Path)))
		require.NoError(t, err, a.Path)
		cfg, err := png.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err, a.Path)
		assert.GreaterOrEqual(t, cfg.Width, 640, a.Path)
		assert.Equal(t, int64(len(b)), a.Bytes)
	}
	for _, want := range []string{
		"Distribution of Overall_Ratings",
		"Count Plot of Location",
		"Correlation Matrix of Employee Ratings",
		"Average Ratings by Employee Tenure",
		"Average Ratings by Participation in Engagement Activities",
		"Average Ratings by Location",
		"Frequency Plot",
		"Employee Tenure by Engagement Activity Participation",
		"Employee Tenure by Location",
		"Common Words in Positive Comments",
		"Common Words in Advice To Mgmt",
		"Average Remote_Work_Satisfaction (Weekly)",
	} {
		assert.True(t, titles[want], want)
	}
}

func TestRenderAll_MissingSectionsAreSkipped(t *testing.T) {
	rep := analysis.Build(&feedback.Dataset{Name: "empty.csv"}, analysis.DefaultOptions())
	m := manifest.New("empty.csv", t.TempDir())

	arts, skipped := testRenderer().RenderAll(rep, m)
	assert.Empty(t, arts)
	assert.Len(t, skipped, expectedCharts)
	assert.Len(t, m.Skipped, expectedCharts)
	assert.Equal(t, "aggregation unavailable", skipped[0].Reason)
}

func TestRenderAll_DegenerateCorrelationStillDrawn(t *testing.T) {
	ds := testutil.SampleDataset(t)
	recs := append([]feedback.Record(nil), ds.Records...)
	for i := range recs {
		recs[i].WellnessSatisfaction = 3
	}
	ds.Records = recs
	rep := analysis.Build(ds, analysis.DefaultOptions())
	require.NotNil(t, rep.Corr)

	m := manifest.New("sample.csv", t.TempDir())
	_, skipped := testRenderer().RenderAll(rep, m)
	for _, s := range skipped {
		assert.NotEqual(t, "Correlation Matrix of Employee Ratings", s.Chart)
	}
}

func TestWeeklyLine_SkipsEmptyWeeks(t *testing.T) {
	start := time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC)
	weeks := []time.Time{start, start.AddDate(0, 0, 7), start.AddDate(0, 0, 14)}
	b, err := weeklyLine("Average Overall_Ratings (Weekly)", weeks, []float64{3.5, math.NaN(), 4}, 640, 400)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)

	_, err = weeklyLine("none", weeks, []float64{math.NaN(), math.NaN(), math.NaN()}, 640, 400)
	assert.Error(t, err)
}

func TestWeeklyLine_SingleWeek(t *testing.T) {
	wk := time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC)
	_, err := weeklyLine("one", []time.Time{wk}, []float64{4}, 640, 400)
	assert.NoError(t, err)
}

func TestWordCloud_PlacesWords(t *testing.T) {
	terms := []analysis.TermCount{{Term: "team", Count: 5}, {Term: "pay", Count: 3}, {Term: "culture", Count: 1}}
	b, placed, err := wordCloud("Common Words", terms, 640, 400)
	require.NoError(t, err)
	assert.Equal(t, 3, placed)
	assert.NotEmpty(t, b)

	_, _, err = wordCloud("none", nil, 640, 400)
	assert.Error(t, err)
}

func TestColormapEndpoints(t *testing.T) {
	assert.Equal(t, coolwarm[0], coolwarm.at(0))
	assert.Equal(t, coolwarm[2], coolwarm.at(1))
	assert.Equal(t, coolwarm[1], coolwarm.at(0.5))
	assert.Equal(t, blues[2], blues.at(2))
	assert.True(t, isDark(blues.at(1)))
	assert.False(t, isDark(blues.at(0)))
}

func TestNiceTicksCoverRange(t *testing.T) {
	ticks := niceTicks(0, 7, 6)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, ticks[0], 0.0)
	assert.GreaterOrEqual(t, ticks[len(ticks)-1], 7.0)
}

func TestRotateCCW(t *testing.T) {
	img := textImage("abc", black)
	rot := rotateCCW(img)
	assert.Equal(t, img.Bounds().Dx(), rot.Bounds().Dy())
	assert.Equal(t, img.Bounds().Dy(), rot.Bounds().Dx())
}

func TestRangeOf(t *testing.T) {
	lo, hi := rangeOf([][]float64{{1, math.NaN()}, {3, 2}})
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)
	lo, hi = rangeOf([][]float64{{2}})
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 2.5, hi)
}
