package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

type VerificationLevel string

const (
	VerificationLevelBasic       VerificationLevel = "basic"
	VerificationLevelFull        VerificationLevel = "full"
	VerificationLevelAmlEnhanced VerificationLevel = "aml_enhanced"
)

type VerificationStatus string

const (
	// VerificationPendingStatus is the sole initial status. A subject can have
	// at most one pending verification at a time.
	VerificationPendingStatus VerificationStatus = "pending"

	// VerificationApprovedStatus is set by a reviewer decision and carries an
	// expires_at validity window.
	VerificationApprovedStatus VerificationStatus = "approved"

	// VerificationRejectedStatus is terminal.
	VerificationRejectedStatus VerificationStatus = "rejected"

	// VerificationExpiredStatus is terminal. Approved verifications transition
	// here once their validity window passes.
	VerificationExpiredStatus VerificationStatus = "expired"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

type Verification struct {
	ID           string             `db:"id"`
	UserID       string             `db:"user_id"`
	Level        VerificationLevel  `db:"level"`
	Status       VerificationStatus `db:"status"`
	RiskLevel    RiskLevel          `db:"risk_level"`
	SubmittedAt  time.Time          `db:"submitted_at"`
	ReviewedAt   sql.NullTime       `db:"reviewed_at"`
	ApprovedAt   sql.NullTime       `db:"approved_at"`
	RejectedAt   sql.NullTime       `db:"rejected_at"`
	ExpiresAt    sql.NullTime       `db:"expires_at"`
	ReviewerID   sql.NullString     `db:"reviewer_id"`
	ReviewResult json.RawMessage    `db:"review_result"`
}
