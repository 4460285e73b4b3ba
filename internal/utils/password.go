package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when no explicit cost is configured.
const DefaultBcryptCost = 10

// HashPassword returns a salted bcrypt hash of plain. A cost outside
// bcrypt's accepted range falls back to DefaultBcryptCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash. Any mismatch or
// malformed hash yields false.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
