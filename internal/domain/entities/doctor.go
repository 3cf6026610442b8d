package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AvailabilityDay lists the bookable time slots of one calendar day
type AvailabilityDay struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlots   []string `json:"timeSlots" validate:"dive,required"`
	IsAvailable bool     `json:"isAvailable"`
}

// AvailabilityCalendar is stored denormalized on the doctor row as JSONB.
type AvailabilityCalendar []AvailabilityDay

// Value implements driver.Valuer
func (c AvailabilityCalendar) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (c *AvailabilityCalendar) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = AvailabilityCalendar{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into AvailabilityCalendar", src)
	}
}

// SlotsOn returns the offered slots for date, or nil when the doctor does not work that day.
func (c AvailabilityCalendar) SlotsOn(date string) []string {
	for _, day := range c {
		if day.Date == date {
			if !day.IsAvailable {
				return nil
			}
			return day.TimeSlots
		}
	}
	return nil
}

// Doctor is reference data managed by administrators
type Doctor struct {
	ID              string               `json:"id" db:"id"`
	Name            string               `json:"name" db:"name"`
	Email           string               `json:"email" db:"email"`
	Phone           string               `json:"phone" db:"phone"`
	Specialization  string               `json:"specialization" db:"specialization"`
	Hospital        string               `json:"hospital" db:"hospital"`
	Qualifications  string               `json:"qualifications,omitempty" db:"qualifications"`
	ExperienceYears int                  `json:"experienceYears" db:"experience_years"`
	ConsultationFee float64              `json:"consultationFee" db:"consultation_fee"`
	Availability    AvailabilityCalendar `json:"availability" db:"availability"`
	IsActive        bool                 `json:"isActive" db:"is_active"`
	CreatedAt       time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" db:"updated_at"`
}
