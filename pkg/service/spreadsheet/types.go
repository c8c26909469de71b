package spreadsheet

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"
)

// ErrParse marks a spreadsheet that could not be read at all. It is kept
// apart from "no valid rows", which is a data problem.
var ErrParse = goerr.New("failed to parse spreadsheet")

// ErrUnsupportedFormat is returned for file types other than xlsx and csv
var ErrUnsupportedFormat = goerr.New("unsupported spreadsheet format")

// Format is a tabular file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a format name such as "xlsx" or ".csv"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", goerr.Wrap(ErrUnsupportedFormat, "unknown format", goerr.V("format", s))
	}
}

// FormatFromName infers the format from a file name extension
func FormatFromName(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Columns maps each import field to a spreadsheet column letter. An empty
// letter means the column is absent from the sheet.
type Columns struct {
	Code       string `toml:"code"`
	Name       string `toml:"name"`
	Category   string `toml:"category"`
	User       string `toml:"user"`
	Department string `toml:"department"`
	Location   string `toml:"location"`
	StartDate  string `toml:"start_date"`
}

// Layout describes where asset rows live in an import sheet
type Layout struct {
	// Sheet name; empty means the first sheet
	Sheet string `toml:"sheet"`
	// Number of leading rows to skip
	HeaderRows int `toml:"header_rows"`
	// Go time layout used to render date cells in the start date column
	DateFormat string  `toml:"date_format"`
	Columns    Columns `toml:"columns"`
}

// DefaultLayout is one header row followed by code, name, category, user,
// department, location and start date in columns A to G.
func DefaultLayout() Layout {
	return Layout{
		HeaderRows: 1,
		DateFormat: "2006-01-02",
		Columns: Columns{
			Code:       "A",
			Name:       "B",
			Category:   "C",
			User:       "D",
			Department: "E",
			Location:   "F",
			StartDate:  "G",
		},
	}
}

// columnIndex holds zero-based indices; -1 means absent
type columnIndex struct {
	code, name, category, user, department, location, startDate int
}

func (l Layout) Validate() error {
	if l.HeaderRows < 0 {
		return goerr.New("header_rows must not be negative", goerr.V("header_rows", l.HeaderRows))
	}
	if l.Columns.Code == "" || l.Columns.Name == "" {
		return goerr.New("code and name columns are required",
			goerr.V("code", l.Columns.Code), goerr.V("name", l.Columns.Name))
	}
	_, err := l.indices()
	return err
}

func (l Layout) indices() (columnIndex, error) {
	resolve := func(letter string) (int, error) {
		if letter == "" {
			return -1, nil
		}
		n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(letter)))
		if err != nil {
			return 0, goerr.Wrap(err, "invalid column letter", goerr.V("column", letter))
		}
		return n - 1, nil
	}

	var idx columnIndex
	targets := []struct {
		letter string
		dst    *int
	}{
		{l.Columns.Code, &idx.code},
		{l.Columns.Name, &idx.name},
		{l.Columns.Category, &idx.category},
		{l.Columns.User, &idx.user},
		{l.Columns.Department, &idx.department},
		{l.Columns.Location, &idx.location},
		{l.Columns.StartDate, &idx.startDate},
	}
	for _, t := range targets {
		n, err := resolve(t.letter)
		if err != nil {
			return columnIndex{}, err
		}
		*t.dst = n
	}
	return idx, nil
}

func (l Layout) dateFormat() string {
	if l.DateFormat == "" {
		return "2006-01-02"
	}
	return l.DateFormat
}
