package auth

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/cradoe/verime/internal/models"
)

// SmsDispatchTopic carries issued codes to the SMS gateway consumer.
const SmsDispatchTopic = "otp.dispatch"

type SmsDispatchEvent struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// IssueChallenge generates a fresh code for the phone number and persists
// it, superseding every unverified code issued before it. The code is
// returned to the caller; whether it is ever echoed in a response is the
// caller's policy, never this package's.
func (a *Authenticator) IssueChallenge(phoneNumber string) (*models.OtpChallenge, error) {
	code, err := a.generateCode()
	if err != nil {
		return nil, err
	}

	now := a.now()

	challenge := &models.OtpChallenge{
		PhoneNumber: phoneNumber,
		Code:        code,
		ExpiresAt:   now.Add(time.Duration(a.OtpExpirySeconds) * time.Second),
		CreatedAt:   now,
	}

	id, err := a.OtpRepo.Replace(challenge)
	if err != nil {
		return nil, err
	}
	challenge.ID = id

	// Persist first, notify after. A failed dispatch must not undo the
	// challenge, the subject can always request a new code.
	a.dispatchSms(phoneNumber, code)

	return challenge, nil
}

// VerifyChallenge consumes the challenge matching the code. It reports
// false for a wrong code, an expired code, an already-consumed code and an
// unknown phone number alike; callers cannot tell the reasons apart.
func (a *Authenticator) VerifyChallenge(phoneNumber, code string) (bool, error) {
	return a.OtpRepo.MarkVerified(phoneNumber, code, a.now())
}

// OtpLogin resolves the account bound to a phone number after its challenge
// has been verified, applying the same lock and status gate as password
// login. Proving control of the phone number is the account verification
// step, so a pending account is activated here rather than refused.
func (a *Authenticator) OtpLogin(phoneNumber string) (*models.User, error) {
	user, found, err := a.UserRepo.GetByPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	now := a.now()

	if user.LockedUntil.Valid && user.LockedUntil.Time.After(now) {
		return nil, ErrAccountLocked
	}

	switch user.Status {
	case models.AccountActiveStatus:
		// proceed
	case models.AccountLockedStatus:
		// The lock window has lapsed (checked above); RecordLogin below
		// flips the account back to active.
	case models.AccountPendingStatus:
		if err := a.UserRepo.Activate(user.ID, now); err != nil {
			return nil, err
		}

		user.Status = models.AccountActiveStatus
		user.VerifiedAt = sql.NullTime{Time: now, Valid: true}

		a.logActivity(user.ID, activatedAccountDescription)
	default:
		return nil, ErrAccountNotActive
	}

	if err := a.UserRepo.RecordLogin(user.ID, now); err != nil {
		return nil, err
	}

	a.logActivity(user.ID, otpLoginDescription)

	user.FailedAttempts = 0
	user.LockedUntil.Valid = false
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	return user, nil
}

// CleanupExpired removes challenges whose validity window has passed.
// Run periodically; deleting an already-deleted row is a no-op, so the
// sweep is idempotent.
func (a *Authenticator) CleanupExpired() (int64, error) {
	return a.OtpRepo.DeleteExpired(a.now())
}

func (a *Authenticator) generateCode() (string, error) {
	reader := a.rand
	if reader == nil {
		reader = rand.Reader
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.OtpLength)), nil)

	n, err := rand.Int(reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", a.OtpLength, n), nil
}

func (a *Authenticator) dispatchSms(phoneNumber, code string) {
	if a.Stream == nil {
		return
	}

	message, err := json.Marshal(SmsDispatchEvent{
		PhoneNumber: phoneNumber,
		Code:        code,
	})
	if err != nil {
		log.Printf("Error encoding sms dispatch event: %v", err)
		return
	}

	if err := a.Stream.ProduceMessage(SmsDispatchTopic, string(message)); err != nil {
		log.Printf("Error producing sms dispatch event: %v", err)
	}
}
