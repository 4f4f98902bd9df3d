// Package hash provides bcrypt password hashing.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrFailedToHashPassword = errors.New("failed to hash password")

type HashService struct {
	cost int
}

func NewHashService() *HashService {
	return &HashService{
		cost: bcrypt.DefaultCost,
	}
}

func (hs *HashService) HashPassword(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), hs.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return h, nil
}

// CheckPasswordHash reports whether password matches hash. Comparison cost is
// dominated by bcrypt itself, so a mismatch is not distinguishable by timing.
func (hs *HashService) CheckPasswordHash(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
