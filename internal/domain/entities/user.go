package entities

import "time"

// UserRole gates access to admin-only endpoints
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleAgent UserRole = "AGENT"
)

// User is the authentication root
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Agent is the corporate entity that books and pays for appointments.
// Appointments, payments and reports are scoped by agent id.
type Agent struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"userId" db:"user_id"`
	CompanyName        string    `json:"companyName" db:"company_name"`
	ContactPerson      string    `json:"contactPerson" db:"contact_person"`
	Phone              string    `json:"phone" db:"phone"`
	Address            string    `json:"address,omitempty" db:"address"`
	RegistrationNumber string    `json:"registrationNumber,omitempty" db:"registration_number"`
	IsVerified         bool      `json:"isVerified" db:"is_verified"`
	IsActive           bool      `json:"isActive" db:"is_active"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`

	Email string `json:"email,omitempty" db:"-"`
}

// RefreshToken is stored hashed; the opaque value only ever lives with the client.
type RefreshToken struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	RevokedAt *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// IsUsable reports whether the token can still be exchanged at now.
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
