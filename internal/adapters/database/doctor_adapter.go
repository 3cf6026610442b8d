package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const doctorsTable = "doctors"

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	baseAdapter
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{baseAdapter: newBaseAdapter(client)}
}

func doctorColumns() []interface{} {
	return []interface{}{
		"id", "name", "email", "phone", "specialization", "hospital",
		goqu.COALESCE(goqu.I("qualifications"), "").As("qualifications"),
		"experience_years", "consultation_fee", "availability", "is_active",
		"created_at", "updated_at",
	}
}

func (a *DoctorAdapter) record(doctor *entities.Doctor) (goqu.Record, error) {
	availability, err := jsonb(doctor.Availability)
	if err != nil {
		return nil, err
	}
	return goqu.Record{
		"name":             doctor.Name,
		"email":            doctor.Email,
		"phone":            doctor.Phone,
		"specialization":   doctor.Specialization,
		"hospital":         doctor.Hospital,
		"qualifications":   nullIfEmpty(doctor.Qualifications),
		"experience_years": doctor.ExperienceYears,
		"consultation_fee": doctor.ConsultationFee,
		"availability":     availability,
		"is_active":        doctor.IsActive,
		"updated_at":       doctor.UpdatedAt,
	}, nil
}

// Create creates a new doctor
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	record, err := a.record(doctor)
	if err != nil {
		return err
	}
	record["id"] = doctor.ID
	record["created_at"] = doctor.CreatedAt

	_, err = a.exec(ctx, a.db.Insert(doctorsTable).Rows(record), "create doctor")
	return err
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	ds := a.db.Select(doctorColumns()...).From(doctorsTable).Where(goqu.Ex{"id": id}).Limit(1)

	var found []*entities.Doctor
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	return found[0], nil
}

// Update updates a doctor
func (a *DoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	doctor.UpdatedAt = time.Now().UTC()
	record, err := a.record(doctor)
	if err != nil {
		return err
	}

	rowsAffected, err := a.exec(ctx,
		a.db.Update(doctorsTable).Set(record).Where(goqu.Ex{"id": doctor.ID}),
		"update doctor",
	)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", doctor.ID))
	}
	return nil
}

// List searches doctors
func (a *DoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, int, error) {
	ds := a.db.Select(doctorColumns()...).From(doctorsTable)

	if !filter.IncludeInactive {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}
	if filter.Specialization != "" {
		ds = ds.Where(goqu.Ex{"specialization": filter.Specialization})
	}
	if filter.Hospital != "" {
		ds = ds.Where(ilike(filter.Hospital, "hospital"))
	}
	if filter.Search != "" {
		ds = ds.Where(ilike(filter.Search, "name", "hospital"))
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	doctors := make([]*entities.Doctor, 0)
	if err := a.selectAll(ctx, &doctors, paginate(ds, filter.Page)); err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

// Specializations lists the distinct specializations of active doctors
func (a *DoctorAdapter) Specializations(ctx context.Context) ([]string, error) {
	ds := a.db.From(doctorsTable).
		Select("specialization").
		Distinct().
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("specialization").Asc())

	var rows []struct {
		Specialization string `db:"specialization"`
	}
	if err := a.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Specialization
	}
	return out, nil
}
