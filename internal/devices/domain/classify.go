package devices

// Disposition is the automated QC outcome for a diagnostic reading.
type Disposition struct {
	Status       DeviceStatus
	ManualQCFlag bool
}

// Classify maps a diagnostic reading to its QC disposition.
// A unit clears automatically unless battery health is below 80 percent
// or it accumulated three or more diagnostic test failures.
func Classify(batteryHealth, failCount int) Disposition {
	if batteryHealth < 80 || failCount >= 3 {
		return Disposition{Status: StatusManualQC, ManualQCFlag: true}
	}
	return Disposition{Status: StatusAutoPass, ManualQCFlag: false}
}
