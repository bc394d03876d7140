// Package testutil holds survey fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// Header is the canonical 17-column header line.
const Header = "ID,Comment_Positives,Comment_Negatives,Advice_To_Mgmt,Overall_Ratings,Work_Balance_Stars," +
	"Culture_Values_Stars,Career_Opportunities_Stars,Comp_Benefit_Stars,Senior_Management_Stars," +
	"Employee_Engagement_Activities,Employee_Tenure,Location,Feedback_Date," +
	"Career_Growth_Opportunities_Stars,Wellness_Programs_Satisfaction,Remote_Work_Satisfaction"

// UniqueRows are eight distinct responses spanning five tenure values and
// four calendar weeks. "team" appears in three positive comments.
var UniqueRows = []string{
	`1,Great team and culture,Long hours,Listen to staff,4,4,5,4,2,4,Yes,1,CityA,2023-01-02,1,5,3`,
	`2,Good pay,Team politics,Reward performance,3,3,4,4,1,3,No,2,CityB,2023-01-04,2,2,2`,
	`3,Flexible Team schedule,Slow promotions,Respect employees,5,5,5,5,3,5,Yes,3,CityC,2023-01-09,3,4,3`,
	`4,Work life balance,Difficult management,Listen more,2,2,3,2,1,2,No,4,CityA,2023-01-10,4,1,2`,
	`5,Learning opportunities,Low salary,Pay more,4,4,4,4,2,4,Yes,5,CityB,2023-01-16,5,5,3`,
	`6,Friendly TEAM,Poor communication,Be transparent,3.5,3,4,3,2,3,No,1,CityC,2023-01-17,1,2,2`,
	`7,Benefits,Politics,Reward loyalty,4,4,5,5,2,4,Yes,3,CityA,2023-01-23,3,4,3`,
	`8,Culture,Pay,Communicate,3,3,3,3,1,3,No,5,CityB,2023-01-24,5,2,2`,
}

// SampleCSV returns the ten-row sample: the unique rows plus exact copies of
// rows 2 and 5.
func SampleCSV() string {
	rows := append([]string{Header}, UniqueRows...)
	rows = append(rows, UniqueRows[1], UniqueRows[4])
	return strings.Join(rows, "\n") + "\n"
}

// CSV joins the header and the given data rows.
func CSV(rows ...string) string {
	return strings.Join(append([]string{Header}, rows...), "\n") + "\n"
}

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// SampleDataset loads SampleCSV with default options.
func SampleDataset(t *testing.T) *feedback.Dataset {
	t.Helper()
	ds, err := feedback.LoadReader("sample.csv", strings.NewReader(SampleCSV()), feedback.DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	return ds
}
