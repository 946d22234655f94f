package utils

import "math/rand"

// OTP bounds. Codes are always six digits so leading zeros never appear in
// the SMS template.
const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP draws a uniform six digit code from [100000, 999999].
func GenerateOTP() int {
	return otpMin + rand.Intn(otpSpan)
}
