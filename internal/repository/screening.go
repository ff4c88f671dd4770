package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cradoe/verime/internal/models"
)

type ScreeningRepository interface {
	Insert(result *models.ScreeningResult) (string, error)
	GetOne(id string) (*models.ScreeningResult, bool, error)
	GetAllByVerificationID(verificationID string) ([]models.ScreeningResult, error)
	Update(id string, matchFound bool, riskScore int, details json.RawMessage) (bool, error)
}

type ScreeningRepositoryImpl struct {
	db *sqlx.DB
}

func NewScreeningRepository(db *sqlx.DB) ScreeningRepository {
	return &ScreeningRepositoryImpl{db: db}
}

func (repo *ScreeningRepositoryImpl) Insert(result *models.ScreeningResult) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO screening_results (verification_id, user_id, type, match_found, risk_score, details, screened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		result.VerificationID,
		result.UserID,
		result.Type,
		result.MatchFound,
		result.RiskScore,
		result.Details,
		result.ScreenedAt,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *ScreeningRepositoryImpl) GetOne(id string) (*models.ScreeningResult, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var result models.ScreeningResult

	query := `SELECT * FROM screening_results WHERE id = $1`

	err := repo.db.GetContext(ctx, &result, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &result, true, err
}

func (repo *ScreeningRepositoryImpl) GetAllByVerificationID(verificationID string) ([]models.ScreeningResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var results []models.ScreeningResult

	query := `SELECT * FROM screening_results WHERE verification_id = $1 ORDER BY screened_at ASC`

	err := repo.db.SelectContext(ctx, &results, query, verificationID)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Update is the administrative correction path. Screening results are
// otherwise immutable after insert.
func (repo *ScreeningRepositoryImpl) Update(id string, matchFound bool, riskScore int, details json.RawMessage) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE screening_results
		SET match_found = $1, risk_score = $2, details = $3
		WHERE id = $4`

	result, err := repo.db.ExecContext(ctx, query, matchFound, riskScore, details, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
