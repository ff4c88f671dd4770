package verification

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cradoe/verime/internal/mocks"
	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/repository"
)

func TestSubmit_CreatesPendingVerification(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetPendingByUserID", "user-1").Return(nil, false, nil)
	mockVerificationRepo.On("Insert", mock.MatchedBy(func(v *models.Verification) bool {
		return v.UserID == "user-1" &&
			v.Status == models.VerificationPendingStatus &&
			v.RiskLevel == models.RiskLevelLow &&
			v.SubmittedAt.Equal(now)
	})).Return("ver-1", nil)

	lc := New(&Lifecycle{
		VerificationRepo: mockVerificationRepo,
		ValidityDays:     365,
	})
	lc.now = func() time.Time { return now }

	verification, err := lc.Submit("user-1", models.VerificationLevelFull)
	require.NoError(t, err)
	require.Equal(t, "ver-1", verification.ID)
	require.Equal(t, models.VerificationPendingStatus, verification.Status)

	mockVerificationRepo.AssertExpectations(t)
}

func TestSubmit_RejectsSecondPending(t *testing.T) {
	pending := &models.Verification{ID: "ver-1", UserID: "user-1", Status: models.VerificationPendingStatus}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetPendingByUserID", "user-1").Return(pending, true, nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	_, err := lc.Submit("user-1", models.VerificationLevelBasic)
	require.ErrorIs(t, err, ErrPendingExists)
}

func TestSubmit_MapsDuplicatePendingFromIndex(t *testing.T) {
	// A concurrent submit can pass the read check and lose the race at
	// insert time; the unique-index violation must surface the same way.
	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetPendingByUserID", "user-1").Return(nil, false, nil)
	mockVerificationRepo.On("Insert", mock.Anything).Return("", repository.ErrDuplicatePending)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	_, err := lc.Submit("user-1", models.VerificationLevelBasic)
	require.ErrorIs(t, err, ErrPendingExists)
}

func TestReview_ApproveSetsValidityWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	pending := &models.Verification{ID: "ver-1", UserID: "user-1", Status: models.VerificationPendingStatus}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "ver-1").Return(pending, true, nil)
	mockVerificationRepo.On("UpdateDecision", mock.Anything).Return(true, nil)

	cache := mocks.NewMockCache()
	require.NoError(t, cache.Set("approval:user-1", "1", time.Hour))

	producer := mocks.NewMockProducer()

	lc := New(&Lifecycle{
		VerificationRepo: mockVerificationRepo,
		Cache:            cache,
		Stream:           producer,
		ValidityDays:     365,
	})
	lc.now = func() time.Time { return now }

	verification, err := lc.Review("ver-1", "reviewer-1", DecisionApprove, json.RawMessage(`{"checks":"ok"}`))
	require.NoError(t, err)
	require.Equal(t, models.VerificationApprovedStatus, verification.Status)
	require.True(t, verification.ApprovedAt.Valid)
	require.Equal(t, now.AddDate(0, 0, 365), verification.ExpiresAt.Time)
	require.Equal(t, "reviewer-1", verification.ReviewerID.String)

	// A stale cached approval must not survive the decision.
	_, err = cache.Get("approval:user-1")
	require.ErrorIs(t, err, mocks.ErrCacheMiss)

	messages := producer.MessagesFor(DecisionTopic)
	require.Len(t, messages, 1)

	var event DecisionEvent
	require.NoError(t, json.Unmarshal([]byte(messages[0]), &event))
	require.Equal(t, "ver-1", event.VerificationID)
	require.Equal(t, models.VerificationApprovedStatus, event.Status)
	require.NotNil(t, event.ExpiresAt)
}

func TestReview_Reject(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	pending := &models.Verification{ID: "ver-1", UserID: "user-1", Status: models.VerificationPendingStatus}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "ver-1").Return(pending, true, nil)
	mockVerificationRepo.On("UpdateDecision", mock.Anything).Return(true, nil)

	producer := mocks.NewMockProducer()

	lc := New(&Lifecycle{
		VerificationRepo: mockVerificationRepo,
		Stream:           producer,
		ValidityDays:     365,
	})
	lc.now = func() time.Time { return now }

	verification, err := lc.Review("ver-1", "reviewer-1", DecisionReject, nil)
	require.NoError(t, err)
	require.Equal(t, models.VerificationRejectedStatus, verification.Status)
	require.True(t, verification.RejectedAt.Valid)
	require.False(t, verification.ExpiresAt.Valid)

	var event DecisionEvent
	messages := producer.MessagesFor(DecisionTopic)
	require.Len(t, messages, 1)
	require.NoError(t, json.Unmarshal([]byte(messages[0]), &event))
	require.Nil(t, event.ExpiresAt)
}

func TestReview_UnknownVerification(t *testing.T) {
	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "missing").Return(nil, false, nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	_, err := lc.Review("missing", "reviewer-1", DecisionApprove, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReview_UnknownDecision(t *testing.T) {
	pending := &models.Verification{ID: "ver-1", UserID: "user-1"}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetOne", "ver-1").Return(pending, true, nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	_, err := lc.Review("ver-1", "reviewer-1", Decision("escalate"), nil)
	require.Error(t, err)
}

func TestHasValidApproval_ReadTimeExpiry(t *testing.T) {
	approvedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	expiresAt := approvedAt.AddDate(0, 0, 365)

	approved := &models.Verification{
		ID:        "ver-1",
		UserID:    "user-1",
		Status:    models.VerificationApprovedStatus,
		ExpiresAt: sql.NullTime{Time: expiresAt, Valid: true},
	}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetLatestApprovedByUserID", "user-1").Return(approved, true, nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	// Inside the validity window.
	lc.now = func() time.Time { return expiresAt.Add(-time.Minute) }
	valid, err := lc.HasValidApproval("user-1")
	require.NoError(t, err)
	require.True(t, valid)

	// Past the window the answer flips even though the status column
	// still says approved; the sweep may not have run yet.
	lc.now = func() time.Time { return expiresAt.Add(time.Minute) }
	valid, err = lc.HasValidApproval("user-1")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestHasValidApproval_NoApprovedVerification(t *testing.T) {
	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetLatestApprovedByUserID", "user-1").Return(nil, false, nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})

	valid, err := lc.HasValidApproval("user-1")
	require.NoError(t, err)
	require.False(t, valid)
}

func TestHasValidApproval_CacheTTLCappedByExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	approved := &models.Verification{
		ID:        "ver-1",
		UserID:    "user-1",
		Status:    models.VerificationApprovedStatus,
		ExpiresAt: sql.NullTime{Time: now.Add(10 * time.Minute), Valid: true},
	}

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("GetLatestApprovedByUserID", "user-1").Return(approved, true, nil)

	cache := mocks.NewMockCache()

	lc := New(&Lifecycle{
		VerificationRepo: mockVerificationRepo,
		Cache:            cache,
	})
	lc.now = func() time.Time { return now }

	valid, err := lc.HasValidApproval("user-1")
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, 10*time.Minute, cache.TTLs["approval:user-1"])

	// A cache hit answers without touching the repository again.
	mockVerificationRepo.AssertNumberOfCalls(t, "GetLatestApprovedByUserID", 1)
	valid, err = lc.HasValidApproval("user-1")
	require.NoError(t, err)
	require.True(t, valid)
	mockVerificationRepo.AssertNumberOfCalls(t, "GetLatestApprovedByUserID", 1)
}

func TestSweepExpired(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mockVerificationRepo := new(mocks.MockVerificationRepo)
	mockVerificationRepo.On("ExpireDue", now).Return(int64(3), nil)

	lc := New(&Lifecycle{VerificationRepo: mockVerificationRepo})
	lc.now = func() time.Time { return now }

	count, err := lc.SweepExpired()
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	mockVerificationRepo.AssertExpectations(t)
}
