package entities

import "time"

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationAppointmentCreated   NotificationType = "APPOINTMENT_CREATED"
	NotificationAppointmentConfirmed NotificationType = "APPOINTMENT_CONFIRMED"
	NotificationAppointmentCancelled NotificationType = "APPOINTMENT_CANCELLED"
	NotificationAppointmentUpdated   NotificationType = "APPOINTMENT_UPDATED"
	NotificationPaymentReceived      NotificationType = "PAYMENT_RECEIVED"
)

// NotificationChannel represents the delivery channel
type NotificationChannel string

const (
	ChannelEmail     NotificationChannel = "email"
	ChannelInApp     NotificationChannel = "in_app"
	ChannelBroadcast NotificationChannel = "broadcast"
)

// Notification is an in-app message shown to a user
type Notification struct {
	ID            string           `json:"id" db:"id"`
	UserID        string           `json:"userId" db:"user_id"`
	Type          NotificationType `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Message       string           `json:"message" db:"message"`
	AppointmentID *string          `json:"appointmentId,omitempty" db:"appointment_id"`
	IsRead        bool             `json:"isRead" db:"is_read"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}
