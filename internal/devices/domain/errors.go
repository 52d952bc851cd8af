package devices

import "errors"

var (
	// ErrEmptyIMEI is returned when a device imei is empty.
	ErrEmptyIMEI = errors.New("devices: empty imei")
	// ErrEmptyModel is returned when a device model is empty.
	ErrEmptyModel = errors.New("devices: empty model")
	// ErrInvalidReading is returned when a reading carries out-of-range values.
	ErrInvalidReading = errors.New("devices: invalid reading")
	// ErrDeviceNotFound is returned when a lookup misses.
	ErrDeviceNotFound = errors.New("devices: not found")
	// ErrDuplicateIMEI is returned when inserting an imei that already exists.
	ErrDuplicateIMEI = errors.New("devices: duplicate imei")
	// ErrAlreadyAssigned guards against reassigning a device.
	ErrAlreadyAssigned = errors.New("devices: already assigned")
	// ErrAlreadyCompleted guards against completing a device twice.
	ErrAlreadyCompleted = errors.New("devices: already completed")
	// ErrEmptyTechnician is returned when an assignment names no technician.
	ErrEmptyTechnician = errors.New("devices: empty technician")
	// ErrNilDevice is returned when saving a nil device.
	ErrNilDevice = errors.New("devices: nil device")
)
