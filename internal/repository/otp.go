package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cradoe/verime/internal/models"
)

type OtpRepository interface {
	Replace(challenge *models.OtpChallenge) (string, error)
	MarkVerified(phoneNumber, code string, now time.Time) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

type OtpRepositoryImpl struct {
	db *sqlx.DB
}

func NewOtpRepository(db *sqlx.DB) OtpRepository {
	return &OtpRepositoryImpl{db: db}
}

// Replace removes every unverified challenge for the phone number and
// inserts the new one in a single transaction, so an older code can never
// verify once a newer one has been issued.
func (repo *OtpRepositoryImpl) Replace(challenge *models.OtpChallenge) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM otp_challenges WHERE phone_number = $1 AND verified = false`

	_, err = tx.ExecContext(ctx, deleteQuery, challenge.PhoneNumber)
	if err != nil {
		return "", err
	}

	var id string

	insertQuery := `
		INSERT INTO otp_challenges (phone_number, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = tx.QueryRowContext(ctx, insertQuery,
		challenge.PhoneNumber,
		challenge.Code,
		challenge.ExpiresAt,
		challenge.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return id, nil
}

// MarkVerified consumes a challenge. The predicate covers code match,
// not-yet-verified and not-yet-expired in one conditional update, so a
// given code verifies exactly once even under concurrent attempts.
func (repo *OtpRepositoryImpl) MarkVerified(phoneNumber, code string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE otp_challenges
		SET verified = true
		WHERE phone_number = $1 AND code = $2 AND verified = false AND expires_at > $3`

	result, err := repo.db.ExecContext(ctx, query, phoneNumber, code, now)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *OtpRepositoryImpl) DeleteExpired(now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM otp_challenges WHERE expires_at <= $1`

	result, err := repo.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
