package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// missingUserHash stands in for the stored hash of a username that does not
// exist. It uses the same cost as real hashes.
var missingUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("missing-user"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash placeholder password: %v", err))
	}
	return hash
})

// CheckMissingUserPassword spends the same bcrypt work as CheckPassword for a
// username that does not exist, so both rejections take equally long.
// It always reports false.
func CheckMissingUserPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(missingUserHash(), []byte(password))
	return false
}
