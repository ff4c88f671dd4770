package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/models"
)

type MockOtpRepo struct {
	mock.Mock
}

func (m *MockOtpRepo) Replace(challenge *models.OtpChallenge) (string, error) {
	args := m.Called(challenge)
	return args.String(0), args.Error(1)
}

func (m *MockOtpRepo) MarkVerified(phoneNumber, code string, now time.Time) (bool, error) {
	args := m.Called(phoneNumber, code, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockOtpRepo) DeleteExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}
