package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/melkeydev/datadesk/types"
	"github.com/xuri/excelize/v2"
)

type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

// FormatFromName picks the file format from the extension of name.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return 0, fmt.Errorf("%w: unsupported file type %q, expected .csv or .xlsx", types.ErrInvalidDataset, filepath.Ext(name))
	}
}

func ReadFile(path string) (*Dataset, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

// Read parses a sheet whose first row names the columns.
func Read(r io.Reader, format Format) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		rows, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, types.ErrEmptyDataset
	}

	return NewDataset(rows[0], rows[1:])
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse csv: %v", types.ErrInvalidDataset, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// readXLSX reads the first sheet of a workbook by stored value, ignoring the
// display format. Numeric cells styled as dates come back as timestamps.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", types.ErrInvalidDataset, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, types.ErrEmptyDataset
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			ts, ok, err := dateCell(f, sheet, axis, cell, date1904, dateStyles)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", axis, err)
			}
			if ok {
				row[c] = ts
			}
		}
	}
	return rows, nil
}

// dateCell converts the serial number held by a date-formatted numeric cell.
// seen caches the verdict per style id.
func dateCell(f *excelize.File, sheet, axis, raw string, date1904 bool, seen map[int]bool) (string, bool, error) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false, nil
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return "", false, err
	}
	if cellType != excelize.CellTypeUnset && cellType != excelize.CellTypeNumber {
		return "", false, nil
	}

	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return "", false, err
	}
	isDate, cached := seen[styleID]
	if !cached {
		style, err := f.GetStyle(styleID)
		if err != nil {
			return "", false, err
		}
		isDate = isDateFormat(style)
		seen[styleID] = isDate
	}
	if !isDate {
		return "", false, nil
	}

	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false, err
	}
	return t.Format("2006-01-02 15:04:05"), true, nil
}

// builtinDateFormats are the number format ids Excel reserves for dates and
// times, including the locale specific ranges.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt == nil {
		return builtinDateFormats[style.NumFmt]
	}
	return isDateFormatCode(*style.CustomNumFmt)
}

// isDateFormatCode reports whether a custom format code renders date or time
// parts. Quoted literals, escaped characters and bracketed sections such as
// colors and locales are skipped.
func isDateFormatCode(code string) bool {
	var (
		inQuote bool
		escaped bool
		bracket []rune
	)
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = ch != '"'
		case bracket != nil:
			if ch != ']' {
				bracket = append(bracket, ch)
				continue
			}
			// elapsed time such as [h] or [mm]
			if b := string(bracket); b != "" && strings.Trim(b, string(b[0])) == "" && strings.ContainsRune("hms", rune(b[0])) {
				return true
			}
			bracket = nil
		case ch == '\\' || ch == '_' || ch == '*':
			escaped = true
		case ch == '"':
			inQuote = true
		case ch == '[':
			bracket = []rune{}
		case ch == ';':
			return false
		case strings.ContainsRune("ydmhs", ch):
			return true
		}
	}
	return false
}
