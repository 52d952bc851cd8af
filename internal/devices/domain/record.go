package devices

import "time"

// Record is the flat persistence shape of a device.
type Record struct {
	IMEI          string
	BatchID       string
	Model         string
	BatteryHealth int
	CycleCount    int
	FailCount     int
	TesterName    string
	UploadDate    time.Time
	ManualQCFlag  bool
	Score         int
	Status        DeviceStatus
	AssignedTo    string
	FaultType     string
}

// Record returns the flat persistence shape of the device.
func (d *Device) Record() Record {
	return Record{
		IMEI:          d.imei,
		BatchID:       d.batchID,
		Model:         d.model,
		BatteryHealth: d.batteryHealth,
		CycleCount:    d.cycleCount,
		FailCount:     d.failCount,
		TesterName:    d.testerName,
		UploadDate:    d.uploadDate,
		ManualQCFlag:  d.manualQCFlag,
		Score:         d.score,
		Status:        d.status,
		AssignedTo:    d.assignedTo,
		FaultType:     d.faultType,
	}
}

// Restore rebuilds a device from its persisted record, bypassing
// classification. Used only by repository implementations.
func Restore(record Record) (*Device, error) {
	if record.IMEI == "" {
		return nil, ErrEmptyIMEI
	}
	if record.Model == "" {
		return nil, ErrEmptyModel
	}
	return &Device{
		imei:          record.IMEI,
		batchID:       record.BatchID,
		model:         record.Model,
		batteryHealth: record.BatteryHealth,
		cycleCount:    record.CycleCount,
		failCount:     record.FailCount,
		testerName:    record.TesterName,
		uploadDate:    record.UploadDate,
		manualQCFlag:  record.ManualQCFlag,
		score:         record.Score,
		status:        record.Status,
		assignedTo:    record.AssignedTo,
		faultType:     record.FaultType,
	}, nil
}
