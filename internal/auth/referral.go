package auth

import "crypto/rand"

const referralCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralCodeLength matches the codes handed to users at registration.
const ReferralCodeLength = 6

// NewReferralCode returns a random uppercase alphanumeric code.
func NewReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referralCharset[int(b)%len(referralCharset)]
	}
	return string(buf), nil
}
