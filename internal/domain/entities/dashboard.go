package entities

import "math"

// PeriodMetric compares a value over the current window with the window before it
type PeriodMetric struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"changePercent"`
}

// NewPeriodMetric computes the percentage change of current against previous.
func NewPeriodMetric(current, previous float64) PeriodMetric {
	return PeriodMetric{
		Current:       current,
		Previous:      previous,
		ChangePercent: PercentageChange(current, previous),
	}
}

// PercentageChange returns (current-previous)/previous*100 rounded to two decimals.
// A zero previous yields 100 when current is positive and 0 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*100*100) / 100
}

// AgentDashboard summarizes an agent's activity over the configured window
type AgentDashboard struct {
	PeriodFrom            string                    `json:"periodFrom"`
	PeriodTo              string                    `json:"periodTo"`
	StatusCounts          map[AppointmentStatus]int `json:"statusCounts"`
	TotalAppointments     PeriodMetric              `json:"totalAppointments"`
	ConfirmedAppointments PeriodMetric              `json:"confirmedAppointments"`
	Revenue               PeriodMetric              `json:"revenue"`
	UnpaidCount           int                       `json:"unpaidCount"`
	Upcoming              []*Appointment            `json:"upcoming"`
}
