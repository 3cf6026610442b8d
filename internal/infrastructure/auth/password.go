package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/corpcare/agentbooking/internal/domain/providers"
)

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. A cost of zero uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ providers.PasswordHasher = (*BcryptHasher)(nil)

// Hash returns the bcrypt hash of password
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
