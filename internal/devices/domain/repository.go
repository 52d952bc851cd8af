package devices

import (
	"context"
	"strings"
)

// Filter narrows a registry listing. Query matches imei or model as a
// case-insensitive substring; Status matches exactly when set.
type Filter struct {
	Query  string
	Status DeviceStatus
}

// Matches reports whether a device passes the filter.
func (f Filter) Matches(d *Device) bool {
	if d == nil {
		return false
	}
	if f.Status != "" && d.Status() != f.Status {
		return false
	}
	if f.Query != "" {
		query := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(d.IMEI()), query) &&
			!strings.Contains(strings.ToLower(d.Model()), query) {
			return false
		}
	}
	return true
}

// Repository manages device persistence.
type Repository interface {
	Get(ctx context.Context, imei string) (*Device, error)
	// List returns a snapshot of matching devices in insertion order.
	List(ctx context.Context, filter Filter) ([]*Device, error)
	// Insert stores new devices all-or-nothing; any existing imei fails
	// the whole call with ErrDuplicateIMEI.
	Insert(ctx context.Context, devices ...*Device) error
	Save(ctx context.Context, device *Device) error
}
