package mockapi

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const otpDigits = 6

// generateOTP returns a random 6-digit code.
func generateOTP() (string, error) {
	b := make([]byte, otpDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, otpDigits)
	for i := range s {
		s[i] = '0' + b[i]%10
	}
	return string(s), nil
}

// hashOTP is the key codes are stored under.
func hashOTP(otp string) string {
	h := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(h[:])
}
