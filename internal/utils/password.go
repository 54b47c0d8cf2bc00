package utils

import "golang.org/x/crypto/bcrypt"

// MinBcryptCost is the lowest cost accepted for password hashes.
const MinBcryptCost = 10

// HashPassword returns bcrypt hash using the given cost.  Costs below
// MinBcryptCost are raised to it.
func HashPassword(plain string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
