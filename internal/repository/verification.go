package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cradoe/verime/internal/models"
)

// ErrDuplicatePending is returned when an insert trips the partial unique
// index that allows only one pending verification per subject.
var ErrDuplicatePending = errors.New("repository: subject already has a pending verification")

type VerificationRepository interface {
	Insert(verification *models.Verification) (string, error)
	GetOne(id string) (*models.Verification, bool, error)
	GetPendingByUserID(userID string) (*models.Verification, bool, error)
	GetLatestApprovedByUserID(userID string) (*models.Verification, bool, error)
	GetAllByUserID(userID string) ([]models.Verification, error)
	UpdateDecision(verification *models.Verification) (bool, error)
	UpdateRiskLevel(id string, level models.RiskLevel) error
	ExpireDue(now time.Time) (int64, error)
}

type VerificationRepositoryImpl struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &VerificationRepositoryImpl{db: db}
}

func (repo *VerificationRepositoryImpl) Insert(verification *models.Verification) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO verifications (user_id, level, status, risk_level, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		verification.UserID,
		verification.Level,
		verification.Status,
		verification.RiskLevel,
		verification.SubmittedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicatePending
		}
		return "", err
	}

	return id, nil
}

func (repo *VerificationRepositoryImpl) GetOne(id string) (*models.Verification, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var verification models.Verification

	query := `SELECT * FROM verifications WHERE id = $1`

	err := repo.db.GetContext(ctx, &verification, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &verification, true, err
}

func (repo *VerificationRepositoryImpl) GetPendingByUserID(userID string) (*models.Verification, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var verification models.Verification

	query := `SELECT * FROM verifications WHERE user_id = $1 AND status = $2`

	err := repo.db.GetContext(ctx, &verification, query, userID, models.VerificationPendingStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &verification, true, err
}

func (repo *VerificationRepositoryImpl) GetLatestApprovedByUserID(userID string) (*models.Verification, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var verification models.Verification

	query := `
		SELECT * FROM verifications
		WHERE user_id = $1 AND status = $2
		ORDER BY approved_at DESC
		LIMIT 1`

	err := repo.db.GetContext(ctx, &verification, query, userID, models.VerificationApprovedStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &verification, true, err
}

func (repo *VerificationRepositoryImpl) GetAllByUserID(userID string) ([]models.Verification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var verifications []models.Verification

	query := `SELECT * FROM verifications WHERE user_id = $1 ORDER BY submitted_at DESC`

	err := repo.db.SelectContext(ctx, &verifications, query, userID)
	if err != nil {
		return nil, err
	}

	return verifications, nil
}

// UpdateDecision persists a reviewer's outcome. The boolean reports whether
// the verification existed at all.
func (repo *VerificationRepositoryImpl) UpdateDecision(verification *models.Verification) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE verifications
		SET status = $1,
			reviewed_at = $2,
			approved_at = $3,
			rejected_at = $4,
			expires_at = $5,
			reviewer_id = $6,
			review_result = $7
		WHERE id = $8`

	result, err := repo.db.ExecContext(ctx, query,
		verification.Status,
		verification.ReviewedAt,
		verification.ApprovedAt,
		verification.RejectedAt,
		verification.ExpiresAt,
		verification.ReviewerID,
		verification.ReviewResult,
		verification.ID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *VerificationRepositoryImpl) UpdateRiskLevel(id string, level models.RiskLevel) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE verifications SET risk_level = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, level, id)
	return err
}

// ExpireDue transitions every approved verification whose validity window
// has passed. The status predicate makes the sweep idempotent: rows already
// expired, or re-reviewed since being read, are not touched again.
func (repo *VerificationRepositoryImpl) ExpireDue(now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE verifications
		SET status = $1
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3`

	result, err := repo.db.ExecContext(ctx, query,
		models.VerificationExpiredStatus,
		models.VerificationApprovedStatus,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
