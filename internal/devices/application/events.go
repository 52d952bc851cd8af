package application

import "time"

// DeviceClassified is published after a device has been ingested and
// its QC disposition recorded on the correlated batch.
type DeviceClassified struct {
	IMEI    string
	BatchID string
	Model   string
	Passed  bool
	At      time.Time
}
