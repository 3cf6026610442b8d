package repositories

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// DoctorRepository defines the interface for doctor data operations
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	Update(ctx context.Context, doctor *entities.Doctor) error
	List(ctx context.Context, filter DoctorFilter) ([]*entities.Doctor, int, error)
	Specializations(ctx context.Context) ([]string, error)
}

// DoctorFilter defines filters for searching doctors
type DoctorFilter struct {
	// Search matches name or hospital case-insensitively
	Search          string
	Specialization  string
	Hospital        string
	IncludeInactive bool
	Page            pagination.Params
}
