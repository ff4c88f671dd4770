// Package risk turns accumulated screening evidence into the coarse
// low/medium/high rating carried on a verification.
package risk

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/repository"

	"time"
)

var (
	ErrScoreOutOfRange      = errors.New("risk: risk score must be between 0 and 100")
	ErrVerificationNotFound = errors.New("risk: verification not found")
	ErrScreeningNotFound    = errors.New("risk: screening result not found")
)

// Score thresholds for the no-match case. These are the canonical
// boundaries; keep them in one place so the policy cannot drift.
const (
	highScoreThreshold   = 70
	mediumScoreThreshold = 40
)

type Assessor struct {
	ScreeningRepo    repository.ScreeningRepository
	VerificationRepo repository.VerificationRepository
	ActivityRepo     repository.ActivityRepository

	now func() time.Time
}

func New(a *Assessor) *Assessor {
	instance := &Assessor{
		ScreeningRepo:    a.ScreeningRepo,
		VerificationRepo: a.VerificationRepo,
		ActivityRepo:     a.ActivityRepo,
		now:              a.now,
	}

	if instance.now == nil {
		instance.now = time.Now
	}

	return instance
}

// RecordScreening persists a new screening result and recomputes the
// verification's risk level from the full evidence set. This is the only
// path that writes a risk level.
func (a *Assessor) RecordScreening(verificationID, userID string, screeningType models.ScreeningType, matchFound bool, riskScore int, details json.RawMessage) (*models.ScreeningResult, error) {
	if riskScore < 0 || riskScore > 100 {
		return nil, ErrScoreOutOfRange
	}

	_, found, err := a.VerificationRepo.GetOne(verificationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrVerificationNotFound
	}

	result := &models.ScreeningResult{
		VerificationID: verificationID,
		UserID:         userID,
		Type:           screeningType,
		MatchFound:     matchFound,
		RiskScore:      riskScore,
		Details:        details,
		ScreenedAt:     a.now(),
	}

	id, err := a.ScreeningRepo.Insert(result)
	if err != nil {
		return nil, err
	}
	result.ID = id

	if err := a.reassess(verificationID); err != nil {
		return nil, err
	}

	a.logActivity(userID, id, "Recorded "+string(screeningType)+" screening result")

	return result, nil
}

// CorrectScreening is the administrative path for amending a recorded
// result. The verification's risk level is recomputed afterwards.
func (a *Assessor) CorrectScreening(screeningID string, matchFound bool, riskScore int, details json.RawMessage) (*models.ScreeningResult, error) {
	if riskScore < 0 || riskScore > 100 {
		return nil, ErrScoreOutOfRange
	}

	result, found, err := a.ScreeningRepo.GetOne(screeningID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrScreeningNotFound
	}

	updated, err := a.ScreeningRepo.Update(screeningID, matchFound, riskScore, details)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrScreeningNotFound
	}

	result.MatchFound = matchFound
	result.RiskScore = riskScore
	result.Details = details

	if err := a.reassess(result.VerificationID); err != nil {
		return nil, err
	}

	a.logActivity(result.UserID, screeningID, "Corrected screening result")

	return result, nil
}

// Assess computes the risk level from the screening results currently
// attached to the verification. It never mutates state.
func (a *Assessor) Assess(verificationID string) (models.RiskLevel, error) {
	results, err := a.ScreeningRepo.GetAllByVerificationID(verificationID)
	if err != nil {
		return "", err
	}

	return LevelForScreenings(results), nil
}

// LevelForScreenings is the single canonical risk policy:
// any confirmed match is high risk regardless of score; otherwise the
// maximum score decides — above 70 high, above 40 medium, else low.
func LevelForScreenings(results []models.ScreeningResult) models.RiskLevel {
	maxScore := 0

	for _, result := range results {
		if result.MatchFound {
			return models.RiskLevelHigh
		}
		if result.RiskScore > maxScore {
			maxScore = result.RiskScore
		}
	}

	switch {
	case maxScore > highScoreThreshold:
		return models.RiskLevelHigh
	case maxScore > mediumScoreThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func (a *Assessor) reassess(verificationID string) error {
	level, err := a.Assess(verificationID)
	if err != nil {
		return err
	}

	return a.VerificationRepo.UpdateRiskLevel(verificationID, level)
}

func (a *Assessor) logActivity(userID, screeningID, description string) {
	if a.ActivityRepo == nil {
		return
	}

	_, err := a.ActivityRepo.Insert(&models.ActivityLog{
		UserID:      userID,
		Entity:      repository.ActivityLogScreeningEntity,
		EntityId:    screeningID,
		Description: description,
	})
	if err != nil {
		log.Printf("Error logging screening activity: %v", err)
	}
}
