package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType selects which aggregation a report snapshots
type ReportType string

const (
	ReportTypeAppointments ReportType = "APPOINTMENTS"
	ReportTypePayments     ReportType = "PAYMENTS"
	ReportTypeSummary      ReportType = "SUMMARY"
)

// IsValid reports whether t is a known report type.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeAppointments, ReportTypePayments, ReportTypeSummary:
		return true
	}
	return false
}

// JSONMap is a JSONB column decoded into a generic map.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
}

// Report is a persisted snapshot of an aggregation over a period
type Report struct {
	ID         string     `json:"id" db:"id"`
	AgentID    *string    `json:"agentId,omitempty" db:"agent_id"`
	Type       ReportType `json:"type" db:"type"`
	Title      string     `json:"title" db:"title"`
	PeriodFrom string     `json:"periodFrom" db:"period_from"`
	PeriodTo   string     `json:"periodTo" db:"period_to"`
	Data       JSONMap    `json:"data" db:"data"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// StatusCount is one row of a group-by-status aggregation
type StatusCount struct {
	Status AppointmentStatus `json:"status" db:"status"`
	Count  int               `json:"count" db:"count"`
	Amount float64           `json:"amount" db:"amount"`
}

// DailyCount is one row of a group-by-date aggregation
type DailyCount struct {
	Date   string  `json:"date" db:"date"`
	Count  int     `json:"count" db:"count"`
	Amount float64 `json:"amount" db:"amount"`
}
