package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX exports the report tables to a workbook, one sheet per table.
// Sections missing from the report are left out.
func WriteXLSX(r *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	sheet := func(name string) (string, error) {
		if first {
			first = false
			return name, f.SetSheetName(f.GetSheetName(0), name)
		}
		_, err := f.NewSheet(name)
		return name, err
	}

	if len(r.Summary) > 0 {
		name, err := sheet("Describe")
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		rows := [][]interface{}{{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
		for _, s := range r.Summary {
			rows = append(rows, []interface{}{string(s.Column), s.Count, cell(s.Mean), cell(s.Std),
				cell(s.Min), cell(s.P25), cell(s.P50), cell(s.P75), cell(s.Max)})
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if r.Corr != nil {
		name, err := sheet("Correlation")
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		head := []interface{}{""}
		for _, c := range r.Corr.Columns {
			head = append(head, string(c))
		}
		rows := [][]interface{}{head}
		for i, c := range r.Corr.Columns {
			row := []interface{}{string(c)}
			for _, v := range r.Corr.Values[i] {
				row = append(row, cell(v))
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	for _, g := range r.GroupBy {
		name, err := sheet(groupSheetName(g.Key))
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		head := []interface{}{string(g.Key), "n"}
		for _, c := range g.Fields {
			head = append(head, string(c))
		}
		rows := [][]interface{}{head}
		for _, gr := range g.Groups {
			row := []interface{}{gr.Key, gr.Size}
			for _, m := range gr.Means {
				row = append(row, cell(m))
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if r.Cross != nil {
		name, err := sheet("CrossTab")
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		head := []interface{}{string(r.Cross.RowKey)}
		for _, c := range r.Cross.Cols {
			head = append(head, c)
		}
		rows := [][]interface{}{head}
		for i, rk := range r.Cross.Rows {
			row := []interface{}{rk}
			for _, n := range r.Cross.Counts[i] {
				row = append(row, n)
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if len(r.Words) > 0 {
		name, err := sheet("Words")
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		rows := [][]interface{}{{"field", "term", "count"}}
		for _, w := range r.Words {
			for _, tc := range w.Top(r.topWords) {
				rows = append(rows, []interface{}{string(w.Field), tc.Term, tc.Count})
			}
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if r.Weekly != nil {
		name, err := sheet("Weekly")
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		head := []interface{}{"week_ending", "n"}
		for _, c := range r.Weekly.Fields {
			head = append(head, string(c))
		}
		rows := [][]interface{}{head}
		for _, w := range r.Weekly.Weeks {
			row := []interface{}{w.End.Format(time.DateOnly), w.Count}
			for _, m := range w.Means {
				row = append(row, cell(m))
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	if first {
		return fmt.Errorf("write xlsx: report has no tables")
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func groupSheetName(key feedback.Column) string {
	switch key {
	case feedback.ColTenure:
		return "By Tenure"
	case feedback.ColEngagement:
		return "By Engagement"
	case feedback.ColLocation:
		return "By Location"
	}
	return "By " + string(key)
}

// cell leaves undefined statistics blank.
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
