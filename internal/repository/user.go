package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cradoe/verime/internal/models"
)

type UserRepository interface {
	CheckIfPhoneNumberExist(phoneNumber string) (bool, error)
	Insert(user *models.User, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByEmail(email string) (*models.User, bool, error)
	GetByPhoneNumber(phoneNumber string) (*models.User, bool, error)
	IncrementFailedAttempts(id string) (int, error)
	Lock(id string, until time.Time) error
	Activate(id string, at time.Time) error
	RecordLogin(id string, at time.Time) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (first_name, last_name, phone_number, email, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			user.FirstName,
			user.LastName,
			user.PhoneNumber,
			user.Email,
			user.HashedPassword,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			user.FirstName,
			user.LastName,
			user.PhoneNumber,
			user.Email,
			user.HashedPassword,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByEmail(email string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := repo.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByPhoneNumber(phoneNumber string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE phone_number = $1`

	err := repo.db.GetContext(ctx, &user, query, phoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`

	err := repo.db.GetContext(ctx, &exists, query, phoneNumber)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// IncrementFailedAttempts bumps the failed-login counter in a single
// statement and returns the new value. Concurrent failed attempts each get
// their own increment; a read-then-write here would lose updates.
func (repo *UserRepositoryImpl) IncrementFailedAttempts(id string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var attempts int

	query := `
		UPDATE users
		SET failed_attempts = failed_attempts + 1
		WHERE id = $1
		RETURNING failed_attempts`

	err := repo.db.GetContext(ctx, &attempts, query, id)
	if err != nil {
		return 0, err
	}

	return attempts, nil
}

func (repo *UserRepositoryImpl) Lock(id string, until time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET status = $1, locked_until = $2 WHERE id = $3`

	_, err := repo.db.ExecContext(ctx, query, models.AccountLockedStatus, until, id)
	return err
}

// Activate flips a pending account to active and stamps verified_at.
// The status predicate keeps it a no-op for accounts past the pending
// stage, so repeated phone verifications cannot unsuspend an account.
func (repo *UserRepositoryImpl) Activate(id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET status = $1, verified_at = $2
		WHERE id = $3 AND status = $4`

	_, err := repo.db.ExecContext(ctx, query, models.AccountActiveStatus, at, id, models.AccountPendingStatus)
	return err
}

// RecordLogin resets the lockout state on a successful login. A locked
// account whose lock has lapsed flips back to active; suspended accounts
// never reach this path.
func (repo *UserRepositoryImpl) RecordLogin(id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET failed_attempts = 0,
			locked_until = NULL,
			last_login_at = $1,
			status = CASE WHEN status = $2 THEN $3 ELSE status END
		WHERE id = $4`

	_, err := repo.db.ExecContext(ctx, query, at, models.AccountLockedStatus, models.AccountActiveStatus, id)
	return err
}
