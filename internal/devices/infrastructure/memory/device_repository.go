package memory

import (
	"context"
	"sync"

	devices "refurb-cloud/internal/devices/domain"
)

// DeviceRepository is an in-memory device registry.
// Reads and writes exchange detached clones so callers never share
// mutable state with the store.
type DeviceRepository struct {
	mu    sync.RWMutex
	data  map[string]*devices.Device
	order []string
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{data: make(map[string]*devices.Device)}
}

// Get loads a device by imei.
func (r *DeviceRepository) Get(ctx context.Context, imei string) (*devices.Device, error) {
	_ = ctx
	if imei == "" {
		return nil, devices.ErrEmptyIMEI
	}

	r.mu.RLock()
	device := r.data[imei]
	r.mu.RUnlock()
	if device == nil {
		return nil, devices.ErrDeviceNotFound
	}
	return device.Clone(), nil
}

// List returns a snapshot of matching devices in insertion order.
func (r *DeviceRepository) List(ctx context.Context, filter devices.Filter) ([]*devices.Device, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*devices.Device, 0, len(r.order))
	for _, imei := range r.order {
		device := r.data[imei]
		if !filter.Matches(device) {
			continue
		}
		result = append(result, device.Clone())
	}
	return result, nil
}

// Insert stores new devices all-or-nothing under a single lock.
func (r *DeviceRepository) Insert(ctx context.Context, batch ...*devices.Device) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))
	for _, device := range batch {
		if device == nil {
			return devices.ErrNilDevice
		}
		imei := device.IMEI()
		if imei == "" {
			return devices.ErrEmptyIMEI
		}
		if _, ok := r.data[imei]; ok {
			return devices.ErrDuplicateIMEI
		}
		if _, ok := seen[imei]; ok {
			return devices.ErrDuplicateIMEI
		}
		seen[imei] = struct{}{}
	}

	for _, device := range batch {
		r.data[device.IMEI()] = device.Clone()
		r.order = append(r.order, device.IMEI())
	}
	return nil
}

// Save overwrites an existing device record.
func (r *DeviceRepository) Save(ctx context.Context, device *devices.Device) error {
	_ = ctx
	if device == nil {
		return devices.ErrNilDevice
	}
	imei := device.IMEI()
	if imei == "" {
		return devices.ErrEmptyIMEI
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[imei]; !ok {
		return devices.ErrDeviceNotFound
	}
	r.data[imei] = device.Clone()
	return nil
}

// Count returns the number of stored devices, for registry gauges.
func (r *DeviceRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
