package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"refurb-cloud/internal/analytics/application"
)

// BuildInventoryXLSX renders the batch and device listings as a workbook.
func BuildInventoryXLSX(batchRows []BatchRow, deviceRows []DeviceRow) ([]byte, error) {
	f := excelize.NewFile()
	batchSheet := "batches"
	deviceSheet := "devices"
	f.SetSheetName("Sheet1", batchSheet)
	f.NewSheet(deviceSheet)

	for i, column := range batchHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(batchSheet, cell, column)
	}
	for i, row := range batchRows {
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("A%d", i+2), row.ID)
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("B%d", i+2), row.Model)
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("C%d", i+2), row.Quantity)
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("D%d", i+2), row.QCPass)
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("E%d", i+2), row.Defects)
		_ = f.SetCellValue(batchSheet, fmt.Sprintf("F%d", i+2), row.Status)
	}

	for i, column := range deviceHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(deviceSheet, cell, column)
	}
	for i, row := range deviceRows {
		_ = f.SetCellValue(deviceSheet, fmt.Sprintf("A%d", i+2), row.IMEI)
		_ = f.SetCellValue(deviceSheet, fmt.Sprintf("B%d", i+2), row.Model)
		_ = f.SetCellValue(deviceSheet, fmt.Sprintf("C%d", i+2), row.Battery)
		_ = f.SetCellValue(deviceSheet, fmt.Sprintf("D%d", i+2), row.Status)
		_ = f.SetCellValue(deviceSheet, fmt.Sprintf("E%d", i+2), row.Technician)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders a one-page operations summary.
func BuildSummaryPDF(title string, snapshot application.Snapshot, batchRows []BatchRow, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Devices: %d", snapshot.TotalDevices))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("QC Pass Rate: %.1f%%", snapshot.QCPassRate*100))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Defect Rate: %.1f%%", snapshot.DefectRate*100))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Completion Rate: %.1f%%", snapshot.CompletionRate*100))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Assigned / Completed: %d / %d", snapshot.Assigned, snapshot.Completed))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Active Batches: %d", snapshot.ActiveBatches))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Batch ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Model", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "QC Pass", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Defects", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range batchRows {
		pdf.CellFormat(35, 6, row.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row.Model, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.QCPass), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.Defects), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
