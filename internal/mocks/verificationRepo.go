package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/models"
)

type MockVerificationRepo struct {
	mock.Mock
}

func (m *MockVerificationRepo) Insert(verification *models.Verification) (string, error) {
	args := m.Called(verification)
	return args.String(0), args.Error(1)
}

func (m *MockVerificationRepo) GetOne(id string) (*models.Verification, bool, error) {
	args := m.Called(id)
	verification, _ := args.Get(0).(*models.Verification)
	return verification, args.Bool(1), args.Error(2)
}

func (m *MockVerificationRepo) GetPendingByUserID(userID string) (*models.Verification, bool, error) {
	args := m.Called(userID)
	verification, _ := args.Get(0).(*models.Verification)
	return verification, args.Bool(1), args.Error(2)
}

func (m *MockVerificationRepo) GetLatestApprovedByUserID(userID string) (*models.Verification, bool, error) {
	args := m.Called(userID)
	verification, _ := args.Get(0).(*models.Verification)
	return verification, args.Bool(1), args.Error(2)
}

func (m *MockVerificationRepo) GetAllByUserID(userID string) ([]models.Verification, error) {
	args := m.Called(userID)
	verifications, _ := args.Get(0).([]models.Verification)
	return verifications, args.Error(1)
}

func (m *MockVerificationRepo) UpdateDecision(verification *models.Verification) (bool, error) {
	args := m.Called(verification)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationRepo) UpdateRiskLevel(id string, level models.RiskLevel) error {
	args := m.Called(id, level)
	return args.Error(0)
}

func (m *MockVerificationRepo) ExpireDue(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}
