package reports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	batches "refurb-cloud/internal/batches/domain"
	devices "refurb-cloud/internal/devices/domain"
)

// ErrBadHeader is returned when a CSV header does not match the contract.
var ErrBadHeader = errors.New("reports: unexpected csv header")

// Flat row shapes and column orders consumed by downstream spreadsheets.
// These are fixed contracts; changing them breaks existing report tooling.
var (
	batchHeader   = []string{"Batch ID", "Model", "Quantity", "QC Pass", "Defects", "Status"}
	deviceHeader  = []string{"IMEI", "Model", "Battery", "Status", "Technician"}
	readingHeader = []string{"IMEI", "Model Name", "Fail (Total Test Fails)", "Battery Health", "Cycle Count", "Tester Name"}
)

// BatchRow is the flat export shape of a batch.
type BatchRow struct {
	ID       string
	Model    string
	Quantity int
	QCPass   int
	Defects  int
	Status   string
}

// DeviceRow is the flat export shape of a device.
type DeviceRow struct {
	IMEI       string
	Model      string
	Battery    int
	Status     string
	Technician string
}

// BatchRows flattens batches into export rows.
func BatchRows(all []*batches.Batch) []BatchRow {
	rows := make([]BatchRow, 0, len(all))
	for _, batch := range all {
		rows = append(rows, BatchRow{
			ID:       batch.ID(),
			Model:    batch.Model(),
			Quantity: batch.Quantity(),
			QCPass:   batch.QCPass(),
			Defects:  batch.Defects(),
			Status:   string(batch.Status()),
		})
	}
	return rows
}

// DeviceRows flattens devices into export rows.
func DeviceRows(all []*devices.Device) []DeviceRow {
	rows := make([]DeviceRow, 0, len(all))
	for _, device := range all {
		technician := device.AssignedTo()
		if technician == "" {
			technician = "Unassigned"
		}
		rows = append(rows, DeviceRow{
			IMEI:       device.IMEI(),
			Model:      device.Model(),
			Battery:    device.BatteryHealth(),
			Status:     string(device.Status()),
			Technician: technician,
		})
	}
	return rows
}

// WriteBatchesCSV writes batch rows in the fixed column order.
func WriteBatchesCSV(w io.Writer, rows []BatchRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(batchHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.Model,
			strconv.Itoa(row.Quantity), strconv.Itoa(row.QCPass), strconv.Itoa(row.Defects),
			row.Status,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseBatchesCSV reads rows previously written by WriteBatchesCSV.
func ParseBatchesCSV(r io.Reader) ([]BatchRow, error) {
	records, err := readAll(r, batchHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]BatchRow, 0, len(records))
	for i, record := range records {
		quantity, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d quantity: %w", i+1, err)
		}
		qcPass, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d qc pass: %w", i+1, err)
		}
		defects, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d defects: %w", i+1, err)
		}
		rows = append(rows, BatchRow{
			ID: record[0], Model: record[1],
			Quantity: quantity, QCPass: qcPass, Defects: defects,
			Status: record[5],
		})
	}
	return rows, nil
}

// WriteDevicesCSV writes device rows in the fixed column order.
func WriteDevicesCSV(w io.Writer, rows []DeviceRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(deviceHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.IMEI, row.Model, strconv.Itoa(row.Battery), row.Status, row.Technician}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseDevicesCSV reads rows previously written by WriteDevicesCSV.
func ParseDevicesCSV(r io.Reader) ([]DeviceRow, error) {
	records, err := readAll(r, deviceHeader)
	if err != nil {
		return nil, err
	}
	rows := make([]DeviceRow, 0, len(records))
	for i, record := range records {
		battery, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d battery: %w", i+1, err)
		}
		rows = append(rows, DeviceRow{
			IMEI: record[0], Model: record[1], Battery: battery,
			Status: record[3], Technician: record[4],
		})
	}
	return rows, nil
}

// ParseReadings reads a diagnostic export produced by the test stations.
// This is the ingestion contract a compliant exporter must satisfy.
func ParseReadings(r io.Reader) ([]devices.Reading, error) {
	records, err := readAll(r, readingHeader)
	if err != nil {
		return nil, err
	}
	readings := make([]devices.Reading, 0, len(records))
	for i, record := range records {
		failCount, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d fail count: %w", i+1, err)
		}
		battery, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d battery health: %w", i+1, err)
		}
		cycles, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("reports: row %d cycle count: %w", i+1, err)
		}
		readings = append(readings, devices.Reading{
			IMEI:          record[0],
			Model:         record[1],
			FailCount:     failCount,
			BatteryHealth: battery,
			CycleCount:    cycles,
			TesterName:    record[5],
		})
	}
	return readings, nil
}

// WriteReadings writes readings in the diagnostic export shape.
func WriteReadings(w io.Writer, readings []devices.Reading) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(readingHeader); err != nil {
		return err
	}
	for _, reading := range readings {
		record := []string{
			reading.IMEI, reading.Model,
			strconv.Itoa(reading.FailCount), strconv.Itoa(reading.BatteryHealth), strconv.Itoa(reading.CycleCount),
			reading.TesterName,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func readAll(r io.Reader, header []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrBadHeader
	}
	for i, column := range header {
		if records[0][i] != column {
			return nil, ErrBadHeader
		}
	}
	return records[1:], nil
}
