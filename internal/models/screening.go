package models

import (
	"encoding/json"
	"time"
)

type ScreeningType string

const (
	ScreeningTypeSanctions    ScreeningType = "sanctions"
	ScreeningTypePep          ScreeningType = "pep"
	ScreeningTypeAdverseMedia ScreeningType = "adverse_media"
)

// ScreeningResult is one screening check performed against a verification.
// Rows are immutable after insert except for the administrative correction
// path, which may amend match_found, risk_score and details.
type ScreeningResult struct {
	ID             string          `db:"id"`
	VerificationID string          `db:"verification_id"`
	UserID         string          `db:"user_id"`
	Type           ScreeningType   `db:"type"`
	MatchFound     bool            `db:"match_found"`
	RiskScore      int             `db:"risk_score"`
	Details        json.RawMessage `db:"details"`
	ScreenedAt     time.Time       `db:"screened_at"`
}
