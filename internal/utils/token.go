package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const resetTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const resetTokenLength = 32

// GenerateOTP returns a 6-digit numeric verification code with leading zeros
// preserved.
func GenerateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateResetToken returns a 32-character alphanumeric password-reset token.
func GenerateResetToken() (string, error) {
	token := make([]byte, resetTokenLength)
	alphabetSize := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		token[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
