package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet     = "Report"
	reportHeaderRow = 3
)

var reportHeader = []string{
	"Code", "Name", "Category", "Department", "User", "Location", "Start Date", "Status",
}

// Report is the input of the export writers
type Report struct {
	Title       string
	GeneratedAt time.Time
	Assets      []*model.Asset
}

func reportRecord(a *model.Asset) []string {
	return []string{
		a.Code,
		a.Name,
		a.Category,
		a.Department,
		a.User,
		a.Location,
		a.StartDate,
		a.Status.Label(),
	}
}

// WriteReport renders the report as xlsx: title on row 1, generation time
// and count on row 2, header on row 3 and one asset per row from row 4.
func WriteReport(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return goerr.Wrap(err, "failed to name sheet")
	}

	lastCol, err := excelize.ColumnNumberToName(len(reportHeader))
	if err != nil {
		return goerr.Wrap(err, "failed to resolve last column")
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return goerr.Wrap(err, "failed to create title style")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create header style")
	}

	if err := f.SetCellValue(reportSheet, "A1", report.Title); err != nil {
		return goerr.Wrap(err, "failed to write title")
	}
	if err := f.MergeCell(reportSheet, "A1", lastCol+"1"); err != nil {
		return goerr.Wrap(err, "failed to merge title")
	}
	if err := f.SetCellStyle(reportSheet, "A1", "A1", titleStyle); err != nil {
		return goerr.Wrap(err, "failed to style title")
	}

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	subtitle := fmt.Sprintf("Generated %s, %d assets", generated.Format("2006-01-02 15:04"), len(report.Assets))
	if err := f.SetCellValue(reportSheet, "A2", subtitle); err != nil {
		return goerr.Wrap(err, "failed to write subtitle")
	}

	if err := writeSheetRow(f, reportHeaderRow, reportHeader); err != nil {
		return err
	}
	headerStart := fmt.Sprintf("A%d", reportHeaderRow)
	headerEnd := fmt.Sprintf("%s%d", lastCol, reportHeaderRow)
	if err := f.SetCellStyle(reportSheet, headerStart, headerEnd, headerStyle); err != nil {
		return goerr.Wrap(err, "failed to style header")
	}

	for i, a := range report.Assets {
		if err := writeSheetRow(f, reportHeaderRow+1+i, reportRecord(a)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(reportSheet, "A", lastCol, 16); err != nil {
		return goerr.Wrap(err, "failed to set column width")
	}

	if err := f.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return goerr.Wrap(err, "invalid row", goerr.V("row", row))
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(reportSheet, cell, &cells); err != nil {
		return goerr.Wrap(err, "failed to write row", goerr.V("row", row))
	}
	return nil
}

// WriteCSV renders the report as a header line plus one line per asset
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}
	for _, a := range report.Assets {
		if err := cw.Write(reportRecord(a)); err != nil {
			return goerr.Wrap(err, "failed to write csv record", goerr.V("code", a.Code))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush csv")
	}
	return nil
}

// Write renders the report in the given format
func Write(w io.Writer, format Format, report Report) error {
	switch format {
	case FormatXLSX:
		return WriteReport(w, report)
	case FormatCSV:
		return WriteCSV(w, report)
	default:
		return goerr.Wrap(ErrUnsupportedFormat, "cannot write format", goerr.V("format", format))
	}
}
