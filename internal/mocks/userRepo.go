package mocks

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/cradoe/verime/internal/models"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	args := m.Called(phoneNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) Insert(user *models.User, tx *sqlx.Tx) (string, error) {
	args := m.Called(user, tx)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetOne(id string) (*models.User, bool, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, bool, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByPhoneNumber(phoneNumber string) (*models.User, bool, error) {
	args := m.Called(phoneNumber)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) IncrementFailedAttempts(id string) (int, error) {
	args := m.Called(id)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) Lock(id string, until time.Time) error {
	args := m.Called(id, until)
	return args.Error(0)
}

func (m *MockUserRepo) Activate(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockUserRepo) RecordLogin(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}
