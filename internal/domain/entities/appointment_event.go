package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// AppointmentEventType represents the lifecycle step that produced an event
type AppointmentEventType string

const (
	AppointmentEventCreated       AppointmentEventType = "appointment.created"
	AppointmentEventUpdated       AppointmentEventType = "appointment.updated"
	AppointmentEventConfirmed     AppointmentEventType = "appointment.confirmed"
	AppointmentEventCancelled     AppointmentEventType = "appointment.cancelled"
	AppointmentEventStatusChanged AppointmentEventType = "appointment.status_changed"
)

// NotificationType maps the event onto the in-app notification it produces.
func (t AppointmentEventType) NotificationType() NotificationType {
	switch t {
	case AppointmentEventCreated:
		return NotificationAppointmentCreated
	case AppointmentEventConfirmed:
		return NotificationAppointmentConfirmed
	case AppointmentEventCancelled:
		return NotificationAppointmentCancelled
	default:
		return NotificationAppointmentUpdated
	}
}

// AppointmentEvent is broadcast to live clients whenever an appointment changes
type AppointmentEvent struct {
	ID            string                 `json:"id"`
	EventType     AppointmentEventType   `json:"eventType"`
	AppointmentID string                 `json:"appointmentId"`
	AgentID       string                 `json:"agentId"`
	DoctorID      string                 `json:"doctorId"`
	Status        AppointmentStatus      `json:"status"`
	Date          string                 `json:"date"`
	TimeSlot      string                 `json:"timeSlot"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changedFields,omitempty"`
}

// NewAppointmentEvent builds an event snapshot of appointment
func NewAppointmentEvent(eventType AppointmentEventType, appointment *Appointment, changedFields map[string]interface{}) *AppointmentEvent {
	return &AppointmentEvent{
		ID:            generateEventID(),
		EventType:     eventType,
		AppointmentID: appointment.ID,
		AgentID:       appointment.AgentID,
		DoctorID:      appointment.DoctorID,
		Status:        appointment.Status,
		Date:          appointment.Date,
		TimeSlot:      appointment.TimeSlot,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomHex(8)
}

func randomHex(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
