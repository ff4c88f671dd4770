package models

import (
	"time"
)

// OtpChallenge is a short-lived numeric code bound to a phone number.
// Issuing a new challenge deletes all prior unverified challenges for the
// same number, so at most one challenge is ever authoritative.
type OtpChallenge struct {
	ID          string    `db:"id"`
	PhoneNumber string    `db:"phone_number"`
	Code        string    `db:"code"`
	Verified    bool      `db:"verified"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}
