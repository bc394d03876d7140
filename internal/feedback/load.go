package feedback

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// MissingPolicy decides what happens to rows holding a null cell.
type MissingPolicy string

const (
	// MissingFail aborts the load on the first null cell.
	MissingFail MissingPolicy = "fail"
	// MissingDrop skips rows with null cells and counts them.
	MissingDrop MissingPolicy = "drop"
)

// ParseMissingPolicy validates a policy name; empty means MissingFail.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MissingFail):
		return MissingFail, nil
	case string(MissingDrop):
		return MissingDrop, nil
	}
	return "", fmt.Errorf("unsupported missing policy: %s (use fail|drop)", s)
}

// LoadOptions controls how the survey file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, ',' is used, or '\t' for .tsv files.
	Delimiter rune
	// Sheet selects the XLSX sheet; empty means the first sheet.
	Sheet string
	// DateLayout is a Go time layout for Feedback_Date. If empty, known layouts are tried.
	DateLayout    string
	MissingPolicy MissingPolicy
	// Locations restricts the Location column; empty accepts any non-empty value.
	Locations []string
}

// DefaultLoadOptions returns the options matching the published dataset.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MissingPolicy: MissingFail,
		Locations:     []string{"CityA", "CityB", "CityC"},
	}
}

// Dataset is the immutable result of a load. Records holds unique, complete rows.
type Dataset struct {
	Name           string
	Records        []Record
	RowsRead       int
	Duplicates     int
	DroppedMissing int
	// Missing counts null cells per column, including those in dropped rows.
	Missing map[Column]int
}

// Len returns the number of unique records.
func (d *Dataset) Len() int { return len(d.Records) }

// Head returns up to n leading records.
func (d *Dataset) Head(n int) []Record {
	if n < 0 || n > len(d.Records) {
		n = len(d.Records)
	}
	return d.Records[:n]
}

// Load reads the survey file at path. XLSX files are read with excelize,
// anything else as delimited text.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	var rows [][]string
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		rows, err = readXLSX(path, opt.Sheet)
	} else {
		f, oerr := os.Open(path)
		if oerr != nil {
			return nil, fmt.Errorf("open input: %w", oerr)
		}
		defer f.Close()
		delim := opt.Delimiter
		if delim == 0 {
			delim = sniffDelimiter(path)
		}
		rows, err = readCSV(f, delim)
	}
	if err != nil {
		return nil, err
	}
	return build(filepath.Base(path), rows, opt)
}

// LoadReader reads delimited text from r. name is used for reporting.
func LoadReader(name string, r io.Reader, opt LoadOptions) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	rows, err := readCSV(r, delim)
	if err != nil {
		return nil, err
	}
	return build(name, rows, opt)
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.TrimLeadingSpace = true
	// Every row must match the header width.
	cr.FieldsPerRecord = 0

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if len(rows) == 0 {
				return nil, fmt.Errorf("read header: %w", err)
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows), err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s: %w", filepath.Base(path), ErrEmptyFile)
	}
	target := sheets[0]
	if sheet != "" {
		target = ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'; available sheets: %s",
				sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	return rows, nil
}

func build(name string, rows [][]string, opt LoadOptions) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	idx, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}
	policy := opt.MissingPolicy
	if policy == "" {
		policy = MissingFail
	}

	ds := &Dataset{Name: name, Missing: make(map[Column]int)}
	seen := make(map[string]struct{}, len(rows))
	ids := make(map[int]int, len(rows))
	vals := make([]string, len(Schema))

	for i, raw := range rows[1:] {
		row := i + 1
		blank := true
		for k, c := range Schema {
			vals[k] = ""
			if j := idx[c]; j < len(raw) {
				vals[k] = strings.TrimSpace(raw[j])
			}
			if vals[k] != "" {
				blank = false
			}
		}
		// Spreadsheets can carry fully empty trailing rows.
		if blank && len(raw) < len(rows[0]) {
			continue
		}
		ds.RowsRead++

		firstMissing := -1
		for k, v := range vals {
			if isNull(v) {
				ds.Missing[Schema[k]]++
				if firstMissing < 0 {
					firstMissing = k
				}
			}
		}
		if firstMissing >= 0 {
			if policy == MissingDrop {
				ds.DroppedMissing++
				continue
			}
			return nil, &FieldError{Row: row, Column: Schema[firstMissing], Value: vals[firstMissing], Err: ErrMissingValue}
		}

		key := strings.Join(vals, "\x1f")
		if _, dup := seen[key]; dup {
			ds.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		rec, err := parseRecord(vals, row, opt.DateLayout)
		if err != nil {
			return nil, err
		}
		if err := validateRecord(&rec, row, opt.Locations); err != nil {
			return nil, err
		}
		if first, ok := ids[rec.ID]; ok {
			return nil, &DuplicateIDError{ID: rec.ID, FirstRow: first, DuplicateRow: row}
		}
		ids[rec.ID] = row
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func mapHeader(header []string) (map[Column]int, error) {
	idx := make(map[Column]int, len(Schema))
	var extra, dups []string
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		c, ok := LookupColumn(name)
		if !ok {
			if name == "" {
				name = fmt.Sprintf("(unnamed #%d)", i+1)
			}
			extra = append(extra, name)
			continue
		}
		if _, dup := idx[c]; dup {
			dups = append(dups, name)
			continue
		}
		idx[c] = i
	}
	var missing []string
	for _, c := range Schema {
		if _, ok := idx[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 || len(extra) > 0 || len(dups) > 0 {
		return nil, &SchemaError{Missing: missing, Extra: extra, Duplicated: dups}
	}
	return idx, nil
}

var nullTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "<na>": {}, "#n/a": {},
}

func isNull(v string) bool {
	_, ok := nullTokens[strings.ToLower(v)]
	return ok
}

func parseRecord(vals []string, row int, dateLayout string) (Record, error) {
	var rec Record
	var err error
	get := func(c Column) string { return vals[schemaIndex[c]] }
	fail := func(c Column, e error) (Record, error) {
		return Record{}, &FieldError{Row: row, Column: c, Value: get(c), Err: e}
	}

	if rec.ID, err = strconv.Atoi(get(ColID)); err != nil {
		return fail(ColID, errors.New("not an integer"))
	}
	rec.CommentPositives = get(ColPositives)
	rec.CommentNegatives = get(ColNegatives)
	rec.AdviceToMgmt = get(ColAdvice)

	ratings := []struct {
		col Column
		dst *float64
	}{
		{ColOverall, &rec.OverallRatings},
		{ColWorkBalance, &rec.WorkBalanceStars},
		{ColCultureValues, &rec.CultureValuesStars},
		{ColCareerOpportunities, &rec.CareerOpportunitiesStars},
		{ColCompBenefit, &rec.CompBenefitStars},
		{ColSeniorManagement, &rec.SeniorManagementStars},
		{ColCareerGrowth, &rec.CareerGrowthStars},
		{ColWellness, &rec.WellnessSatisfaction},
		{ColRemoteWork, &rec.RemoteWorkSatisfaction},
	}
	for _, rt := range ratings {
		x, perr := strconv.ParseFloat(get(rt.col), 64)
		if perr != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return fail(rt.col, errors.New("not a number"))
		}
		*rt.dst = x
	}

	rec.Engagement = normalizeYesNo(get(ColEngagement))
	if rec.Tenure, err = parseWholeNumber(get(ColTenure)); err != nil {
		return fail(ColTenure, err)
	}
	rec.Location = get(ColLocation)
	if rec.FeedbackDate, err = parseDate(get(ColFeedbackDate), dateLayout); err != nil {
		return fail(ColFeedbackDate, err)
	}
	return rec, nil
}

var schemaIndex = func() map[Column]int {
	m := make(map[Column]int, len(Schema))
	for i, c := range Schema {
		m[c] = i
	}
	return m
}()

// parseWholeNumber accepts "3" and "3.0" but not "3.5".
func parseWholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a whole number")
	}
	return int(f), nil
}

func normalizeYesNo(s string) string {
	switch {
	case strings.EqualFold(s, "yes"):
		return "Yes"
	case strings.EqualFold(s, "no"):
		return "No"
	}
	return s
}

var dateLayouts = []string{
	"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04",
	"2006/01/02", "01/02/2006", "1/2/2006", "1/2/2006 15:04",
}

func parseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("date does not match layout %q", layout)
		}
		return t, nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
