package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

// Largest serial number Excel renders as a date (9999-12-31)
const maxExcelDate = 2958465

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows extracts raw rows from an xlsx or csv stream. Rows are returned
// as found; dropping incomplete ones is the caller's job. Completely blank
// rows are skipped.
func ReadRows(r io.Reader, format Format, layout Layout) ([]model.ImportRow, error) {
	if err := layout.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid layout")
	}
	idx, err := layout.indices()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return readXLSX(r, layout, idx)
	case FormatCSV:
		return readCSV(r, layout, idx)
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "cannot read format", goerr.V("format", format))
	}
}

func readXLSX(r io.Reader, layout Layout, idx columnIndex) ([]model.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrParse, err), "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := layout.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, goerr.Wrap(ErrParse, "workbook has no sheet")
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers so they can be told
	// apart from text dates.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrParse, err), "failed to read sheet", goerr.V("sheet", sheet))
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	return extractRows(rows, layout, idx, func(raw string) string {
		return renderDateCell(raw, date1904, layout.dateFormat())
	}), nil
}

func readCSV(r io.Reader, layout Layout, idx columnIndex) ([]model.ImportRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrParse, err), "failed to read csv")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrParse, err), "failed to parse csv")
	}

	return extractRows(rows, layout, idx, strings.TrimSpace), nil
}

func extractRows(rows [][]string, layout Layout, idx columnIndex, dateCell func(string) string) []model.ImportRow {
	var result []model.ImportRow
	for i, row := range rows {
		if i < layout.HeaderRows || isBlank(row) {
			continue
		}

		cell := func(n int) string {
			if n < 0 || n >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[n])
		}

		result = append(result, model.ImportRow{
			Code:       cell(idx.code),
			Name:       cell(idx.name),
			Category:   cell(idx.category),
			User:       cell(idx.user),
			Department: cell(idx.department),
			Location:   cell(idx.location),
			StartDate:  dateCell(cell(idx.startDate)),
		})
	}
	return result
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// renderDateCell formats a numeric serial as a date and passes text through
func renderDateCell(raw string, date1904 bool, layout string) string {
	raw = strings.TrimSpace(raw)
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 || serial > maxExcelDate || math.IsNaN(serial) {
		return raw
	}

	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return raw
	}
	return t.Format(layout)
}
