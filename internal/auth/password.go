package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is lowered by tests that create many accounts.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SetTestCost makes hashing cheap. Tests only.
func SetTestCost() {
	bcryptCost = bcrypt.MinCost
}
