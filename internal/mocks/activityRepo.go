package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/models"
)

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	args := m.Called(log)
	inserted, _ := args.Get(0).(*models.ActivityLog)
	return inserted, args.Error(1)
}
