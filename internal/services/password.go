package services

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt hash. Equal plaintexts yield
// different hashes; the salt is embedded in the output.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches hash. bcrypt's own
// compare is used so mismatches are not detectable by timing.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
