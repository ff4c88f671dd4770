// Package auth gates access to the service: one-time passcodes bound to a
// phone number, and password login with failed-attempt counting and timed
// account lockout.
package auth

import (
	"errors"
	"io"
	"time"

	"github.com/cradoe/verime/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown identifier and wrong password
	// alike, so responses leak nothing about which accounts exist.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	ErrAccountNotActive = errors.New("auth: account is not active")
	ErrAccountLocked    = errors.New("auth: account is temporarily locked")
)

// Producer publishes dispatch events (the SMS carrying an OTP code).
// Publishing is fire-and-forget; the challenge is persisted first and a
// failed publish never fails the issuance.
type Producer interface {
	ProduceMessage(topic, message string) error
}

type Authenticator struct {
	UserRepo     repository.UserRepository
	OtpRepo      repository.OtpRepository
	ActivityRepo repository.ActivityRepository
	Stream       Producer

	OtpLength        int
	OtpExpirySeconds int
	MaxLoginAttempts int
	LockDuration     time.Duration

	// now and rand are swapped out in tests for deterministic expiry and
	// code generation.
	now  func() time.Time
	rand io.Reader
}

func New(a *Authenticator) *Authenticator {
	instance := &Authenticator{
		UserRepo:         a.UserRepo,
		OtpRepo:          a.OtpRepo,
		ActivityRepo:     a.ActivityRepo,
		Stream:           a.Stream,
		OtpLength:        a.OtpLength,
		OtpExpirySeconds: a.OtpExpirySeconds,
		MaxLoginAttempts: a.MaxLoginAttempts,
		LockDuration:     a.LockDuration,
		now:              a.now,
		rand:             a.rand,
	}

	if instance.OtpLength <= 0 {
		instance.OtpLength = 6
	}
	if instance.OtpExpirySeconds <= 0 {
		instance.OtpExpirySeconds = 300
	}
	if instance.MaxLoginAttempts <= 0 {
		instance.MaxLoginAttempts = 5
	}
	if instance.LockDuration <= 0 {
		instance.LockDuration = 30 * time.Minute
	}
	if instance.now == nil {
		instance.now = time.Now
	}

	return instance
}
