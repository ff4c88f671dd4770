package models

import (
	"database/sql"
	"time"
)

type AccountStatus string

const (
	// AccountPendingStatus indicates that the user's account has not been verified.
	// This is the default status after registration.
	AccountPendingStatus AccountStatus = "pending"

	// AccountActiveStatus indicates that the user's account is active and fully functional.
	// The user can log in, submit verifications, and access all account features.
	AccountActiveStatus AccountStatus = "active"

	// AccountLockedStatus indicates that the user's account has been locked after
	// repeated failed login attempts. The lock is temporary; it lifts once
	// locked_until has passed.
	AccountLockedStatus AccountStatus = "locked"

	// AccountSuspendedStatus indicates an administrative suspension.
	// A suspended account cannot log in until support reinstates it.
	AccountSuspendedStatus AccountStatus = "suspended"
)

type User struct {
	ID             string        `db:"id"`
	FirstName      string        `db:"first_name"`
	LastName       string        `db:"last_name"`
	PhoneNumber    string        `db:"phone_number"`
	Email          string        `db:"email"`
	Status         AccountStatus `db:"status"`
	HashedPassword string        `db:"hashed_password"`
	FailedAttempts int           `db:"failed_attempts"`
	LockedUntil    sql.NullTime  `db:"locked_until"`
	LastLoginAt    sql.NullTime  `db:"last_login_at"`
	VerifiedAt     sql.NullTime  `db:"verified_at"`
	CreatedAt      time.Time     `db:"created_at"`
	DeletedAt      sql.NullTime  `db:"deleted_at"`
}
