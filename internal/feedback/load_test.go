package feedback_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/KaramelBytes/empsent-cli/internal/testutil"
)

func TestLoad_NoDuplicatesKeepsEveryLine(t *testing.T) {
	path := testutil.WriteFile(t, "unique.csv", testutil.CSV(testutil.UniqueRows...))

	ds, err := feedback.Load(path, feedback.DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, "unique.csv", ds.Name)
	assert.Equal(t, len(testutil.UniqueRows), ds.RowsRead)
	assert.Equal(t, len(testutil.UniqueRows), ds.Len())
	assert.Zero(t, ds.Duplicates)
}

func TestLoad_DropsExactDuplicates(t *testing.T) {
	path := testutil.WriteFile(t, "sample.csv", testutil.SampleCSV())

	ds, err := feedback.Load(path, feedback.DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, 10, ds.RowsRead)
	assert.Equal(t, 2, ds.Duplicates)
	assert.Equal(t, 8, ds.Len())
	// first occurrence wins and order is preserved
	for i, rec := range ds.Records {
		assert.Equal(t, i+1, rec.ID)
	}
}

func TestLoad_ParsesTypedFields(t *testing.T) {
	ds := testutil.SampleDataset(t)
	rec := ds.Records[5]

	assert.Equal(t, 6, rec.ID)
	assert.Equal(t, "Friendly TEAM", rec.CommentPositives)
	assert.Equal(t, 3.5, rec.OverallRatings)
	assert.Equal(t, "No", rec.Engagement)
	assert.Equal(t, 1, rec.Tenure)
	assert.Equal(t, "CityC", rec.Location)
	assert.Equal(t, time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC), rec.FeedbackDate)

	head := ds.Head(3)
	require.Len(t, head, 3)
	assert.Equal(t, 3, head[2].ID)
	assert.Len(t, ds.Head(100), 8)
}

func TestLoad_ColumnOrderAndCaseDoNotMatter(t *testing.T) {
	header := strings.Split(testutil.Header, ",")
	row := strings.Split(testutil.UniqueRows[0], ",")
	// swap the first and last columns, lowercase one header
	header[0], header[len(header)-1] = header[len(header)-1], strings.ToLower(header[0])
	row[0], row[len(row)-1] = row[len(row)-1], row[0]
	content := strings.Join(header, ",") + "\n" + strings.Join(row, ",") + "\n"

	ds, err := feedback.LoadReader("swapped.csv", strings.NewReader(content), feedback.DefaultLoadOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, 1, ds.Records[0].ID)
	assert.Equal(t, 3.0, ds.Records[0].RemoteWorkSatisfaction)
}

func TestLoad_SchemaMismatch(t *testing.T) {
	header := strings.Replace(testutil.Header, "Location,", "Office,", 1)
	row := testutil.UniqueRows[0]

	_, err := feedback.LoadReader("bad.csv", strings.NewReader(header+"\n"+row+"\n"), feedback.DefaultLoadOptions())
	var se *feedback.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"Location"}, se.Missing)
	assert.Equal(t, []string{"Office"}, se.Extra)
	assert.Contains(t, err.Error(), "missing columns: Location")
}

func TestLoad_ExtraColumnIsSchemaError(t *testing.T) {
	content := testutil.Header + ",Department\n" + testutil.UniqueRows[0] + ",Sales\n"
	_, err := feedback.LoadReader("extra.csv", strings.NewReader(content), feedback.DefaultLoadOptions())
	var se *feedback.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, se.Missing)
	assert.Equal(t, []string{"Department"}, se.Extra)
}

func TestLoad_FieldErrors(t *testing.T) {
	cases := []struct {
		name   string
		row    string
		column feedback.Column
		target error
	}{
		{
			name:   "unparsable date",
			row:    strings.Replace(testutil.UniqueRows[0], "2023-01-02", "yesterday", 1),
			column: feedback.ColFeedbackDate,
		},
		{
			name:   "non numeric rating",
			row:    strings.Replace(testutil.UniqueRows[0], "Listen to staff,4,", "Listen to staff,four,", 1),
			column: feedback.ColOverall,
		},
		{
			name:   "rating out of range",
			row:    strings.Replace(testutil.UniqueRows[0], "Listen to staff,4,", "Listen to staff,6,", 1),
			column: feedback.ColOverall,
			target: feedback.ErrConstraint,
		},
		{
			name:   "culture below its floor",
			row:    strings.Replace(testutil.UniqueRows[0], "4,4,5,4,2,4", "4,4,1,4,2,4", 1),
			column: feedback.ColCultureValues,
			target: feedback.ErrConstraint,
		},
		{
			name:   "rating not on half step",
			row:    strings.Replace(testutil.UniqueRows[0], "Listen to staff,4,", "Listen to staff,3.3,", 1),
			column: feedback.ColOverall,
			target: feedback.ErrConstraint,
		},
		{
			name:   "unknown location",
			row:    strings.Replace(testutil.UniqueRows[0], "CityA", "CityZ", 1),
			column: feedback.ColLocation,
			target: feedback.ErrConstraint,
		},
		{
			name:   "engagement not yes or no",
			row:    strings.Replace(testutil.UniqueRows[0], ",Yes,", ",Maybe,", 1),
			column: feedback.ColEngagement,
			target: feedback.ErrConstraint,
		},
		{
			name:   "fractional tenure",
			row:    strings.Replace(testutil.UniqueRows[0], "Yes,1,CityA", "Yes,1.5,CityA", 1),
			column: feedback.ColTenure,
		},
		{
			name:   "missing value",
			row:    strings.Replace(testutil.UniqueRows[0], "Long hours", "", 1),
			column: feedback.ColNegatives,
			target: feedback.ErrMissingValue,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := feedback.LoadReader("bad.csv", strings.NewReader(testutil.CSV(tc.row)), feedback.DefaultLoadOptions())
			var fe *feedback.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 1, fe.Row)
			assert.Equal(t, tc.column, fe.Column)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestLoad_DropPolicySkipsIncompleteRows(t *testing.T) {
	broken := strings.Replace(testutil.UniqueRows[2], "Respect employees", "NaN", 1)
	content := testutil.CSV(testutil.UniqueRows[0], testutil.UniqueRows[1], broken)

	opt := feedback.DefaultLoadOptions()
	opt.MissingPolicy = feedback.MissingDrop
	ds, err := feedback.LoadReader("drop.csv", strings.NewReader(content), opt)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.RowsRead)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, ds.DroppedMissing)
	assert.Equal(t, 1, ds.Missing[feedback.ColAdvice])
}

func TestLoad_DuplicateIDAcrossDistinctRows(t *testing.T) {
	clash := strings.Replace(testutil.UniqueRows[1], "2,Good pay", "1,Good pay", 1)
	_, err := feedback.LoadReader("ids.csv", strings.NewReader(testutil.CSV(testutil.UniqueRows[0], clash)), feedback.DefaultLoadOptions())
	var de *feedback.DuplicateIDError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.ID)
	assert.Equal(t, 2, de.DuplicateRow)
}

func TestLoad_MalformedRowWidth(t *testing.T) {
	content := testutil.CSV(testutil.UniqueRows[0], "9,too,short")
	_, err := feedback.LoadReader("short.csv", strings.NewReader(content), feedback.DefaultLoadOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read row 2")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := feedback.Load(filepath.Join(t.TempDir(), "nope.csv"), feedback.DefaultLoadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_EmptyFile(t *testing.T) {
	path := testutil.WriteFile(t, "empty.csv", "")
	_, err := feedback.Load(path, feedback.DefaultLoadOptions())
	assert.ErrorIs(t, err, feedback.ErrEmptyFile)
}

func TestLoad_CustomDateLayoutAndDelimiter(t *testing.T) {
	row := strings.ReplaceAll(testutil.UniqueRows[0], ",", ";")
	row = strings.Replace(row, "2023-01-02", "02.01.2023", 1)
	content := strings.ReplaceAll(testutil.Header, ",", ";") + "\n" + row + "\n"

	opt := feedback.DefaultLoadOptions()
	opt.Delimiter = ';'
	opt.DateLayout = "02.01.2006"
	ds, err := feedback.LoadReader("semi.csv", strings.NewReader(content), opt)
	require.NoError(t, err)
	assert.Equal(t, time.January, ds.Records[0].FeedbackDate.Month())
	assert.Equal(t, 2, ds.Records[0].FeedbackDate.Day())
}

func TestLoad_XLSXSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Responses")
	require.NoError(t, err)
	header := strings.Split(testutil.Header, ",")
	require.NoError(t, f.SetSheetRow("Responses", "A1", &header))
	for i, line := range testutil.UniqueRows[:3] {
		cells := strings.Split(line, ",")
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Responses", cell, &cells))
	}
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.SaveAs(path))

	opt := feedback.DefaultLoadOptions()
	opt.Sheet = "responses"
	ds, err := feedback.Load(path, opt)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "Flexible Team schedule", ds.Records[2].CommentPositives)

	opt.Sheet = "Missing"
	_, err = feedback.Load(path, opt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available sheets")
}

func TestParseMissingPolicy(t *testing.T) {
	p, err := feedback.ParseMissingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, feedback.MissingFail, p)

	p, err = feedback.ParseMissingPolicy(" DROP ")
	require.NoError(t, err)
	assert.Equal(t, feedback.MissingDrop, p)

	_, err = feedback.ParseMissingPolicy("ignore")
	assert.Error(t, err)
}
