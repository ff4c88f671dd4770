package risk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cradoe/verime/internal/mocks"
	"github.com/cradoe/verime/internal/models"
)

func TestLevelForScreenings_NoResults(t *testing.T) {
	require.Equal(t, models.RiskLevelLow, LevelForScreenings(nil))
	require.Equal(t, models.RiskLevelLow, LevelForScreenings([]models.ScreeningResult{}))
}

func TestLevelForScreenings_MatchAlwaysHigh(t *testing.T) {
	// A confirmed match is high risk no matter how low the scores are.
	results := []models.ScreeningResult{
		{Type: models.ScreeningTypeSanctions, MatchFound: true, RiskScore: 0},
		{Type: models.ScreeningTypePep, MatchFound: false, RiskScore: 10},
	}

	require.Equal(t, models.RiskLevelHigh, LevelForScreenings(results))
}

func TestLevelForScreenings_ScoreBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		maxScore int
		want     models.RiskLevel
	}{
		{"zero is low", 0, models.RiskLevelLow},
		{"forty is low", 40, models.RiskLevelLow},
		{"forty one is medium", 41, models.RiskLevelMedium},
		{"seventy is medium", 70, models.RiskLevelMedium},
		{"seventy one is high", 71, models.RiskLevelHigh},
		{"hundred is high", 100, models.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []models.ScreeningResult{
				{Type: models.ScreeningTypeAdverseMedia, MatchFound: false, RiskScore: 5},
				{Type: models.ScreeningTypeSanctions, MatchFound: false, RiskScore: tt.maxScore},
			}

			require.Equal(t, tt.want, LevelForScreenings(results))
		})
	}
}

func TestRecordScreening_ScoreOutOfRange(t *testing.T) {
	assessor := New(&Assessor{})

	for _, score := range []int{-1, 101, 1000} {
		_, err := assessor.RecordScreening("ver-1", "user-1", models.ScreeningTypeSanctions, false, score, nil)
		require.ErrorIs(t, err, ErrScoreOutOfRange)
	}
}

func TestRecordScreening_VerificationNotFound(t *testing.T) {
	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "missing").Return(nil, false, nil)

	assessor := New(&Assessor{
		VerificationRepo: mockVerificationRepo,
	})

	_, err := assessor.RecordScreening("missing", "user-1", models.ScreeningTypeSanctions, false, 10, nil)
	require.ErrorIs(t, err, ErrVerificationNotFound)
}

func TestRecordScreening_PersistsAndReassesses(t *testing.T) {
	verification := &models.Verification{ID: "ver-1", UserID: "user-1"}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "ver-1").Return(verification, true, nil)
	mockVerificationRepo.On("UpdateRiskLevel", "ver-1", models.RiskLevelHigh).Return(nil)

	mockScreeningRepo := new(mocks.MockScreeningRepo)
	mockScreeningRepo.On("Insert", mock.Anything).Return("scr-1", nil)
	mockScreeningRepo.On("GetAllByVerificationID", "ver-1").Return([]models.ScreeningResult{
		{ID: "scr-1", MatchFound: false, RiskScore: 80},
	}, nil)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assessor := New(&Assessor{
		ScreeningRepo:    mockScreeningRepo,
		VerificationRepo: mockVerificationRepo,
	})
	assessor.now = func() time.Time { return now }

	result, err := assessor.RecordScreening("ver-1", "user-1", models.ScreeningTypeSanctions, false, 80, nil)
	require.NoError(t, err)
	require.Equal(t, "scr-1", result.ID)
	require.Equal(t, now, result.ScreenedAt)

	mockVerificationRepo.AssertExpectations(t)
	mockScreeningRepo.AssertExpectations(t)
}

func TestRecordScreening_BoundaryScoresAccepted(t *testing.T) {
	for _, score := range []int{0, 100} {
		level := models.RiskLevelLow
		if score == 100 {
			level = models.RiskLevelHigh
		}

		mockVerificationRepo := new(mocks.MockVerificationRepo)
		mockVerificationRepo.On("GetOne", "ver-1").Return(&models.Verification{ID: "ver-1"}, true, nil)
		mockVerificationRepo.On("UpdateRiskLevel", "ver-1", level).Return(nil)

		mockScreeningRepo := new(mocks.MockScreeningRepo)
		mockScreeningRepo.On("Insert", mock.Anything).Return("scr-1", nil)
		mockScreeningRepo.On("GetAllByVerificationID", "ver-1").Return([]models.ScreeningResult{
			{ID: "scr-1", MatchFound: false, RiskScore: score},
		}, nil)

		assessor := New(&Assessor{
			ScreeningRepo:    mockScreeningRepo,
			VerificationRepo: mockVerificationRepo,
		})

		_, err := assessor.RecordScreening("ver-1", "user-1", models.ScreeningTypePep, false, score, nil)
		require.NoError(t, err)
	}
}

func TestCorrectScreening_ReassessesVerification(t *testing.T) {
	existing := &models.ScreeningResult{
		ID:             "scr-1",
		VerificationID: "ver-1",
		UserID:         "user-1",
		MatchFound:     true,
		RiskScore:      90,
	}

	details := json.RawMessage(`{"note":"false positive"}`)

	mockScreeningRepo := new(mocks.MockScreeningRepo)
	mockScreeningRepo.On("GetOne", "scr-1").Return(existing, true, nil)
	mockScreeningRepo.On("Update", "scr-1", false, 10, details).Return(true, nil)
	mockScreeningRepo.On("GetAllByVerificationID", "ver-1").Return([]models.ScreeningResult{
		{ID: "scr-1", MatchFound: false, RiskScore: 10},
	}, nil)

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("UpdateRiskLevel", "ver-1", models.RiskLevelLow).Return(nil)

	assessor := New(&Assessor{
		ScreeningRepo:    mockScreeningRepo,
		VerificationRepo: mockVerificationRepo,
	})

	result, err := assessor.CorrectScreening("scr-1", false, 10, details)
	require.NoError(t, err)
	require.False(t, result.MatchFound)
	require.Equal(t, 10, result.RiskScore)

	mockScreeningRepo.AssertExpectations(t)
	mockVerificationRepo.AssertExpectations(t)
}

func TestCorrectScreening_NotFound(t *testing.T) {
	mockScreeningRepo := new(mocks.MockScreeningRepo)
	mockScreeningRepo.On("GetOne", "missing").Return(nil, false, nil)

	assessor := New(&Assessor{
		ScreeningRepo: mockScreeningRepo,
	})

	_, err := assessor.CorrectScreening("missing", false, 10, nil)
	require.ErrorIs(t, err, ErrScreeningNotFound)
}
