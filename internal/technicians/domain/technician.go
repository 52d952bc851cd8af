package technicians

import (
	"context"
	"errors"
)

// ErrUnknownTechnician is returned when a name is not in the reference set.
var ErrUnknownTechnician = errors.New("technicians: unknown technician")

// Technician is read-only reference data a device can be assigned to.
type Technician struct {
	ID   string
	Name string
}

// Repository exposes the technician reference set.
type Repository interface {
	FindByName(ctx context.Context, name string) (*Technician, error)
	List(ctx context.Context) ([]Technician, error)
}
