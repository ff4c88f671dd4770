// Package verification owns the identity-verification lifecycle for a
// subject: submission, reviewer decision, expiry sweep and validity checks.
//
// The state machine is: pending -> approved | rejected (reviewer-driven),
// approved -> expired (time-driven). Rejected and expired are terminal.
package verification

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/repository"
)

var (
	ErrNotFound      = errors.New("verification: not found")
	ErrPendingExists = errors.New("verification: subject already has a pending verification")
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecisionTopic carries reviewer outcomes so downstream consumers can
// notify the subject without the review call blocking on delivery.
const DecisionTopic = "kyc.decision"

type DecisionEvent struct {
	VerificationID string                    `json:"verification_id"`
	UserID         string                    `json:"user_id"`
	Status         models.VerificationStatus `json:"status"`
	ExpiresAt      *time.Time                `json:"expires_at,omitempty"`
}

// Producer publishes lifecycle events. Delivery failure is never surfaced
// to the caller; events are best-effort.
type Producer interface {
	ProduceMessage(topic, message string) error
}

// ApprovalCache caches positive validity answers. Misses and cache errors
// are both treated as "ask the database".
type ApprovalCache interface {
	Get(key string) (string, error)
	Set(key string, value string, expiration time.Duration) error
	Delete(key string) error
}

const maxApprovalCacheTTL = time.Hour

type Lifecycle struct {
	VerificationRepo repository.VerificationRepository
	ActivityRepo     repository.ActivityRepository
	Cache            ApprovalCache
	Stream           Producer
	ValidityDays     int

	// now is swapped out in tests to simulate expiry without real delays.
	now func() time.Time
}

func New(lc *Lifecycle) *Lifecycle {
	instance := &Lifecycle{
		VerificationRepo: lc.VerificationRepo,
		ActivityRepo:     lc.ActivityRepo,
		Cache:            lc.Cache,
		Stream:           lc.Stream,
		ValidityDays:     lc.ValidityDays,
		now:              lc.now,
	}

	if instance.now == nil {
		instance.now = time.Now
	}

	return instance
}

// Submit opens a new verification for the subject. A subject can hold at
// most one pending verification; the check here is backed by a partial
// unique index, so concurrent submits cannot slip past it.
func (lc *Lifecycle) Submit(userID string, level models.VerificationLevel) (*models.Verification, error) {
	_, found, err := lc.VerificationRepo.GetPendingByUserID(userID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrPendingExists
	}

	verification := &models.Verification{
		UserID:      userID,
		Level:       level,
		Status:      models.VerificationPendingStatus,
		RiskLevel:   models.RiskLevelLow,
		SubmittedAt: lc.now(),
	}

	id, err := lc.VerificationRepo.Insert(verification)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrPendingExists
		}
		return nil, err
	}

	verification.ID = id

	lc.logActivity(userID, id, "Submitted verification for review")

	return verification, nil
}

// Review applies a reviewer's decision. An approval gets a validity window
// of ValidityDays from the moment of approval.
//
// Re-reviewing an already-terminal verification is permitted and silently
// overwrites the previous outcome; see DESIGN.md before tightening this.
func (lc *Lifecycle) Review(verificationID, reviewerID string, decision Decision, reviewResult json.RawMessage) (*models.Verification, error) {
	verification, found, err := lc.VerificationRepo.GetOne(verificationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	now := lc.now()
	verification.ReviewedAt = sql.NullTime{Time: now, Valid: true}
	verification.ReviewerID = sql.NullString{String: reviewerID, Valid: true}
	verification.ReviewResult = reviewResult

	switch decision {
	case DecisionApprove:
		verification.Status = models.VerificationApprovedStatus
		verification.ApprovedAt = sql.NullTime{Time: now, Valid: true}
		verification.ExpiresAt = sql.NullTime{Time: now.AddDate(0, 0, lc.ValidityDays), Valid: true}
	case DecisionReject:
		verification.Status = models.VerificationRejectedStatus
		verification.RejectedAt = sql.NullTime{Time: now, Valid: true}
	default:
		return nil, fmt.Errorf("verification: unknown decision %q", decision)
	}

	found, err = lc.VerificationRepo.UpdateDecision(verification)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	if lc.Cache != nil {
		if err := lc.Cache.Delete(approvalCacheKey(verification.UserID)); err != nil {
			log.Printf("Error invalidating approval cache for user %s: %v", verification.UserID, err)
		}
	}

	lc.publishDecision(verification)
	lc.logActivity(verification.UserID, verification.ID, fmt.Sprintf("Verification %s by reviewer", verification.Status))

	return verification, nil
}

// SweepExpired transitions every overdue approved verification to expired
// and returns how many rows changed. Safe to run concurrently across
// process instances; the update is conditional on the current status.
func (lc *Lifecycle) SweepExpired() (int64, error) {
	return lc.VerificationRepo.ExpireDue(lc.now())
}

// HasValidApproval reports whether the subject's most recent approved
// verification is still inside its validity window. Expiry is evaluated
// against the clock here, not against the swept status, so the answer is
// correct even when the sweep has not caught up yet.
func (lc *Lifecycle) HasValidApproval(userID string) (bool, error) {
	key := approvalCacheKey(userID)

	if lc.Cache != nil {
		if _, err := lc.Cache.Get(key); err == nil {
			return true, nil
		}
	}

	verification, found, err := lc.VerificationRepo.GetLatestApprovedByUserID(userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	now := lc.now()
	if verification.ExpiresAt.Valid && !verification.ExpiresAt.Time.After(now) {
		return false, nil
	}

	if lc.Cache != nil {
		ttl := maxApprovalCacheTTL
		if verification.ExpiresAt.Valid {
			if remaining := verification.ExpiresAt.Time.Sub(now); remaining < ttl {
				ttl = remaining
			}
		}

		if err := lc.Cache.Set(key, "1", ttl); err != nil {
			log.Printf("Error caching approval for user %s: %v", userID, err)
		}
	}

	return true, nil
}

func (lc *Lifecycle) publishDecision(verification *models.Verification) {
	if lc.Stream == nil {
		return
	}

	event := DecisionEvent{
		VerificationID: verification.ID,
		UserID:         verification.UserID,
		Status:         verification.Status,
	}
	if verification.ExpiresAt.Valid {
		event.ExpiresAt = &verification.ExpiresAt.Time
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding decision event: %v", err)
		return
	}

	if err := lc.Stream.ProduceMessage(DecisionTopic, string(message)); err != nil {
		log.Printf("Error producing decision event: %v", err)
	}
}

func (lc *Lifecycle) logActivity(userID, verificationID, description string) {
	if lc.ActivityRepo == nil {
		return
	}

	_, err := lc.ActivityRepo.Insert(&models.ActivityLog{
		UserID:      userID,
		Entity:      repository.ActivityLogVerificationEntity,
		EntityId:    verificationID,
		Description: description,
	})
	if err != nil {
		log.Printf("Error logging verification activity: %v", err)
	}
}

func approvalCacheKey(userID string) string {
	return "approval:" + userID
}
