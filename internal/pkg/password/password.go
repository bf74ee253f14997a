package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is the longest password bcrypt accepts, counted in bytes.
const MaxBytes = 72

var (
	// ErrMismatch is returned by Compare when the password does not match the hash.
	ErrMismatch = errors.New("password mismatch")
	// ErrTooLong is returned by Hash for passwords over MaxBytes bytes.
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// dummyHash is compared against when no stored hash exists, so unknown and
// known accounts take the same time to reject.
var dummyHash = mustHash("unknown-account")

func mustHash(s string) []byte {
	b, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		panic("password: " + err.Error())
	}
	return b
}

// Hash returns a salted bcrypt hash of password.
func Hash(password string) (string, error) {
	if len(password) > MaxBytes {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare checks password against hash in constant time. An empty hash is
// still compared against a fixed dummy hash and always fails.
func Compare(hash, password string) error {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
