package auth

import (
	"log"

	"github.com/cradoe/gopass"

	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/repository"
)

const (
	failedLoginDescription      = "Failed login attempt"
	lockedAccountDescription    = "Account locked after repeated failed logins"
	loginDescription            = "Logged in"
	otpLoginDescription         = "Logged in with one-time passcode"
	activatedAccountDescription = "Activated account after phone verification"
)

// PasswordLogin verifies the password for the account matching the email.
// Each mismatch increments the account's failed-attempt counter; hitting
// the configured threshold locks the account for the configured duration.
// A successful login resets the counter and clears the lock.
func (a *Authenticator) PasswordLogin(email, password string) (*models.User, error) {
	user, found, err := a.UserRepo.GetByEmail(email)
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
		// The lock window has lapsed (checked above); a correct password
		// below flips the account back to active.
	default:
		return nil, ErrAccountNotActive
	}

	matches, err := gopass.ComparePasswordAndHash(password, user.HashedPassword)
	if err != nil {
		return nil, err
	}

	if !matches {
		attempts, err := a.UserRepo.IncrementFailedAttempts(user.ID)
		if err != nil {
			return nil, err
		}

		a.logActivity(user.ID, failedLoginDescription)

		if attempts >= a.MaxLoginAttempts {
			until := now.Add(a.LockDuration)
			if err := a.UserRepo.Lock(user.ID, until); err != nil {
				return nil, err
			}

			a.logActivity(user.ID, lockedAccountDescription)
		}

		return nil, ErrInvalidCredentials
	}

	if err := a.UserRepo.RecordLogin(user.ID, now); err != nil {
		return nil, err
	}

	a.logActivity(user.ID, loginDescription)

	user.FailedAttempts = 0
	user.LockedUntil.Valid = false
	user.LastLoginAt.Time = now
	user.LastLoginAt.Valid = true

	return user, nil
}

func (a *Authenticator) logActivity(userID, description string) {
	if a.ActivityRepo == nil {
		return
	}

	_, err := a.ActivityRepo.Insert(&models.ActivityLog{
		UserID:      userID,
		Entity:      repository.ActivityLogUserEntity,
		EntityId:    userID,
		Description: description,
	})
	if err != nil {
		log.Printf("Error logging auth activity: %v", err)
	}
}
