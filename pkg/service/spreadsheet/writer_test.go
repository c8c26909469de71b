package spreadsheet_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/xuri/excelize/v2"
)

func sampleReport() spreadsheet.Report {
	return spreadsheet.Report{
		Title:       "Q1 Audit",
		GeneratedAt: time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC),
		Assets: []*model.Asset{
			{Code: "A001", Name: "Desk", Category: "Furniture", User: "alice", Department: "IT",
				Location: "Room 1", StartDate: "2023-04-01", Status: types.AssetStatusMatched},
			{Code: "A002", Name: "Chair", Status: types.AssetStatusUnchecked},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, spreadsheet.WriteReport(&buf, sampleReport())).Required()

	f, err := excelize.OpenReader(&buf)
	gt.NoError(t, err).Required()
	defer func() { _ = f.Close() }()

	gt.Array(t, f.GetSheetList()).Equal([]string{"Report"})

	rows, err := f.GetRows("Report")
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(5).Required()

	gt.Value(t, rows[0][0]).Equal("Q1 Audit")
	gt.String(t, rows[1][0]).Contains("2 assets")
	gt.Array(t, rows[2]).Equal([]string{"Code", "Name", "Category", "Department", "User", "Location", "Start Date", "Status"})
	gt.Array(t, rows[3]).Equal([]string{"A001", "Desk", "Furniture", "IT", "alice", "Room 1", "2023-04-01", "Matched"})
	gt.Value(t, rows[4][0]).Equal("A002")
	gt.Value(t, rows[4][7]).Equal("Unchecked")
}

func TestWriteReport_ReadBack(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, spreadsheet.WriteReport(&buf, sampleReport())).Required()

	layout := spreadsheet.Layout{
		HeaderRows: 3,
		Columns: spreadsheet.Columns{
			Code: "A", Name: "B", Category: "C", Department: "D", User: "E", Location: "F", StartDate: "G",
		},
	}
	rows, err := spreadsheet.ReadRows(&buf, spreadsheet.FormatXLSX, layout)
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(2).Required()
	gt.Value(t, rows[0]).Equal(model.ImportRow{
		Code: "A001", Name: "Desk", Category: "Furniture", User: "alice", Department: "IT",
		Location: "Room 1", StartDate: "2023-04-01",
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, spreadsheet.Write(&buf, spreadsheet.FormatCSV, sampleReport())).Required()

	records, err := csv.NewReader(&buf).ReadAll()
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(3).Required()
	gt.Value(t, records[0][0]).Equal("Code")
	gt.Value(t, records[1][7]).Equal("Matched")
	gt.Value(t, records[2][1]).Equal("Chair")
}
