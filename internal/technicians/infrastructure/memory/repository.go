package memory

import (
	"context"
	"fmt"

	technicians "refurb-cloud/internal/technicians/domain"
)

// TechnicianRepository holds the technician reference set in memory.
// The set is seeded once at startup and never mutated afterwards.
type TechnicianRepository struct {
	byName map[string]technicians.Technician
	names  []string
}

// NewTechnicianRepository seeds a repository from a list of names.
func NewTechnicianRepository(names []string) *TechnicianRepository {
	repo := &TechnicianRepository{byName: make(map[string]technicians.Technician, len(names))}
	for i, name := range names {
		if name == "" {
			continue
		}
		if _, ok := repo.byName[name]; ok {
			continue
		}
		repo.byName[name] = technicians.Technician{
			ID:   fmt.Sprintf("tech-%03d", i+1),
			Name: name,
		}
		repo.names = append(repo.names, name)
	}
	return repo
}

// FindByName resolves a technician by exact name.
func (r *TechnicianRepository) FindByName(ctx context.Context, name string) (*technicians.Technician, error) {
	_ = ctx
	tech, ok := r.byName[name]
	if !ok {
		return nil, technicians.ErrUnknownTechnician
	}
	return &tech, nil
}

// List returns the reference set in seed order.
func (r *TechnicianRepository) List(ctx context.Context) ([]technicians.Technician, error) {
	_ = ctx
	result := make([]technicians.Technician, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.byName[name])
	}
	return result, nil
}
