package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/mocks"
	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/verification"
)

func TestNotifyDecision_SendsOutcomeEmail(t *testing.T) {
	user := &models.User{
		ID:        "user-1",
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
	}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetOne", "user-1").Return(user, true, nil)

	mockMailer := new(mocks.MockMailer)
	mockMailer.On("Send", user.Email, mock.Anything, []string{"verification-approved.tmpl"}).Return(nil)

	wk := New(&Worker{
		UserRepo: mockUserRepo,
		Mailer:   mockMailer,
	})

	expiresAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	wk.notifyDecision(&verification.DecisionEvent{
		VerificationID: "ver-1",
		UserID:         "user-1",
		Status:         models.VerificationApprovedStatus,
		ExpiresAt:      &expiresAt,
	})

	mockMailer.AssertExpectations(t)
}

func TestNotifyDecision_RejectionTemplate(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "ada@example.com"}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetOne", "user-1").Return(user, true, nil)

	mockMailer := new(mocks.MockMailer)
	mockMailer.On("Send", user.Email, mock.Anything, []string{"verification-rejected.tmpl"}).Return(nil)

	wk := New(&Worker{
		UserRepo: mockUserRepo,
		Mailer:   mockMailer,
	})

	wk.notifyDecision(&verification.DecisionEvent{
		VerificationID: "ver-1",
		UserID:         "user-1",
		Status:         models.VerificationRejectedStatus,
	})

	mockMailer.AssertExpectations(t)
}

func TestNotifyDecision_UnknownUserSendsNothing(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetOne", "ghost").Return(nil, false, nil)

	mockMailer := new(mocks.MockMailer)

	wk := New(&Worker{
		UserRepo: mockUserRepo,
		Mailer:   mockMailer,
	})

	wk.notifyDecision(&verification.DecisionEvent{
		VerificationID: "ver-1",
		UserID:         "ghost",
		Status:         models.VerificationApprovedStatus,
	})

	mockMailer.AssertNotCalled(t, "Send")
}
