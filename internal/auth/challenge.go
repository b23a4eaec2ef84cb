package auth

import (
	"math/rand/v2"
	"strconv"
)

// MaxChallengeDigits bounds the code length so the range stays within int.
const MaxChallengeDigits = 9

// NewChallenge returns a random numeric code of the given number of digits
// with no leading zero. It is a typing step shown next to the login form, not
// a secret. digits is clamped to 1..MaxChallengeDigits; zero or less means 5.
func NewChallenge(digits int) string {
	if digits <= 0 {
		digits = 5
	}
	digits = min(digits, MaxChallengeDigits)
	low := 1
	for i := 1; i < digits; i++ {
		low *= 10
	}
	return strconv.Itoa(low + rand.IntN(low*9))
}
