package entities

import "time"

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment is created when an appointment is confirmed. Amount and method
// never change after creation.
type Payment struct {
	ID             string        `json:"id" db:"id"`
	AppointmentID  string        `json:"appointmentId" db:"appointment_id"`
	AgentID        string        `json:"agentId" db:"agent_id"`
	Amount         float64       `json:"amount" db:"amount"`
	Method         PaymentMethod `json:"method" db:"method"`
	Status         PaymentStatus `json:"status" db:"status"`
	TransactionRef string        `json:"transactionRef" db:"transaction_ref"`
	PaidAt         *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// PaymentSummary aggregates an agent's payments.
type PaymentSummary struct {
	TotalPaid   float64                   `json:"totalPaid"`
	PaidCount   int                       `json:"paidCount"`
	FailedCount int                       `json:"failedCount"`
	ByMethod    map[PaymentMethod]float64 `json:"byMethod"`
}
