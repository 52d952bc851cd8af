package devices

import "time"

// DeviceStatus is the QC lifecycle state of a single unit.
type DeviceStatus string

const (
	StatusAutoPass  DeviceStatus = "Auto Pass"
	StatusManualQC  DeviceStatus = "Manual QC"
	StatusRepairing DeviceStatus = "Repairing"
	StatusCompleted DeviceStatus = "Completed"
)

// Reading is a structured diagnostic record handed over by the intake
// boundary. Range validation of the raw values happens at that boundary.
type Reading struct {
	IMEI          string
	Model         string
	BatteryHealth int
	CycleCount    int
	FailCount     int
	TesterName    string
}

// Validate checks the reading invariants the registry relies on.
func (r Reading) Validate() error {
	if r.IMEI == "" {
		return ErrEmptyIMEI
	}
	if r.Model == "" {
		return ErrEmptyModel
	}
	if r.BatteryHealth < 0 || r.BatteryHealth > 100 {
		return ErrInvalidReading
	}
	if r.CycleCount < 0 || r.FailCount < 0 {
		return ErrInvalidReading
	}
	return nil
}

// Device is the aggregate for a single physical unit, keyed by imei.
// Classification is applied exactly once at construction; the disposition
// flag and score never change afterwards, only the lifecycle status does.
type Device struct {
	imei          string
	batchID       string
	model         string
	batteryHealth int
	cycleCount    int
	failCount     int
	testerName    string
	uploadDate    time.Time

	manualQCFlag bool
	score        int
	status       DeviceStatus

	assignedTo string
	faultType  string
}

// NewDevice builds a device from a reading and applies the classification rule.
func NewDevice(reading Reading, batchID string, uploadDate time.Time) (*Device, error) {
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	disposition := Classify(reading.BatteryHealth, reading.FailCount)
	return &Device{
		imei:          reading.IMEI,
		batchID:       batchID,
		model:         reading.Model,
		batteryHealth: reading.BatteryHealth,
		cycleCount:    reading.CycleCount,
		failCount:     reading.FailCount,
		testerName:    reading.TesterName,
		uploadDate:    uploadDate,
		manualQCFlag:  disposition.ManualQCFlag,
		score:         scoreReading(reading),
		status:        disposition.Status,
	}, nil
}

// scoreReading derives the refurbishment score from the diagnostic values.
func scoreReading(reading Reading) int {
	score := reading.BatteryHealth - 5*reading.FailCount
	if score < 0 {
		return 0
	}
	return score
}

// Assign binds the device to a technician. First assignment wins.
func (d *Device) Assign(technician, faultType string) error {
	if technician == "" {
		return ErrEmptyTechnician
	}
	if d.assignedTo != "" {
		return ErrAlreadyAssigned
	}
	d.assignedTo = technician
	d.faultType = faultType
	if d.status == StatusAutoPass || d.status == StatusManualQC {
		d.status = StatusRepairing
	}
	return nil
}

// ClearAssignment reverts an assignment, restoring the classification status.
// Used only to compensate a failed cross-registry update.
func (d *Device) ClearAssignment() {
	d.assignedTo = ""
	d.faultType = ""
	if d.status == StatusRepairing {
		if d.manualQCFlag {
			d.status = StatusManualQC
		} else {
			d.status = StatusAutoPass
		}
	}
}

// Complete marks refurbishment work on the device as finished.
// A second completion is rejected so batch counters only ever count
// distinct devices.
func (d *Device) Complete() error {
	if d.status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	d.status = StatusCompleted
	return nil
}

// IMEI returns the device key.
func (d *Device) IMEI() string { return d.imei }

// BatchID returns the originating batch id.
func (d *Device) BatchID() string { return d.batchID }

// Model returns the device model name.
func (d *Device) Model() string { return d.model }

// BatteryHealth returns the measured battery health percentage.
func (d *Device) BatteryHealth() int { return d.batteryHealth }

// CycleCount returns the battery cycle count.
func (d *Device) CycleCount() int { return d.cycleCount }

// FailCount returns the total diagnostic test failures.
func (d *Device) FailCount() int { return d.failCount }

// TesterName returns the diagnostic station operator.
func (d *Device) TesterName() string { return d.testerName }

// UploadDate returns when the reading was ingested.
func (d *Device) UploadDate() time.Time { return d.uploadDate }

// ManualQCFlag reports whether classification flagged the unit for review.
func (d *Device) ManualQCFlag() bool { return d.manualQCFlag }

// Score returns the derived refurbishment score.
func (d *Device) Score() int { return d.score }

// Status returns the current lifecycle status.
func (d *Device) Status() DeviceStatus { return d.status }

// AssignedTo returns the technician name, empty when unassigned.
func (d *Device) AssignedTo() string { return d.assignedTo }

// FaultType returns the fault recorded at assignment time.
func (d *Device) FaultType() string { return d.faultType }

// Clone returns a detached copy.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	copy := *d
	return &copy
}
