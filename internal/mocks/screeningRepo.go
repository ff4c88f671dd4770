package mocks

import (
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/models"
)

type MockScreeningRepo struct {
	mock.Mock
}

func (m *MockScreeningRepo) Insert(result *models.ScreeningResult) (string, error) {
	args := m.Called(result)
	return args.String(0), args.Error(1)
}

func (m *MockScreeningRepo) GetOne(id string) (*models.ScreeningResult, bool, error) {
	args := m.Called(id)
	result, _ := args.Get(0).(*models.ScreeningResult)
	return result, args.Bool(1), args.Error(2)
}

func (m *MockScreeningRepo) GetAllByVerificationID(verificationID string) ([]models.ScreeningResult, error) {
	args := m.Called(verificationID)
	results, _ := args.Get(0).([]models.ScreeningResult)
	return results, args.Error(1)
}

func (m *MockScreeningRepo) Update(id string, matchFound bool, riskScore int, details json.RawMessage) (bool, error) {
	args := m.Called(id, matchFound, riskScore, details)
	return args.Bool(0), args.Error(1)
}
