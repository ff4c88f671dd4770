package auth

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cradoe/verime/internal/mocks"
	"github.com/cradoe/verime/internal/models"
)

// Hash of "correctpassword".
const testPasswordHash = "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG"

func activeTestUser() *models.User {
	return &models.User{
		ID:             "user-1",
		Email:          "test@example.com",
		HashedPassword: testPasswordHash,
		Status:         models.AccountActiveStatus,
	}
}

func TestPasswordLogin_UnknownEmail(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", "nobody@example.com").Return(nil, false, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})

	_, err := authenticator.PasswordLogin("nobody@example.com", "correctpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordLogin_AccountNotActive(t *testing.T) {
	for _, status := range []models.AccountStatus{models.AccountPendingStatus, models.AccountSuspendedStatus} {
		user := activeTestUser()
		user.Status = status

		mockUserRepo := new(mocks.MockUserRepo)
		mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)

		authenticator := New(&Authenticator{UserRepo: mockUserRepo})

		_, err := authenticator.PasswordLogin(user.Email, "correctpassword")
		require.ErrorIs(t, err, ErrAccountNotActive, "status %s", status)
	}
}

func TestPasswordLogin_LockedAccount(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := activeTestUser()
	user.Status = models.AccountLockedStatus
	user.LockedUntil = sql.NullTime{Time: now.Add(10 * time.Minute), Valid: true}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	// Even the correct password is refused while the lock holds.
	_, err := authenticator.PasswordLogin(user.Email, "correctpassword")
	require.ErrorIs(t, err, ErrAccountLocked)
}

func TestPasswordLogin_WrongPasswordIncrementsAttempts(t *testing.T) {
	user := activeTestUser()

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)
	mockUserRepo.On("IncrementFailedAttempts", user.ID).Return(3, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})

	_, err := authenticator.PasswordLogin(user.Email, "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Below the threshold the account must not be locked.
	mockUserRepo.AssertNotCalled(t, "Lock")
	mockUserRepo.AssertExpectations(t)
}

func TestPasswordLogin_LocksAtThreshold(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	user := activeTestUser()

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)
	mockUserRepo.On("IncrementFailedAttempts", user.ID).Return(5, nil)
	mockUserRepo.On("Lock", user.ID, now.Add(30*time.Minute)).Return(nil)

	authenticator := New(&Authenticator{
		UserRepo:         mockUserRepo,
		MaxLoginAttempts: 5,
		LockDuration:     30 * time.Minute,
	})
	authenticator.now = func() time.Time { return now }

	_, err := authenticator.PasswordLogin(user.Email, "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	mockUserRepo.AssertExpectations(t)
}

func TestPasswordLogin_Success(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := activeTestUser()
	user.FailedAttempts = 3

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)
	mockUserRepo.On("RecordLogin", user.ID, now).Return(nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	loggedIn, err := authenticator.PasswordLogin(user.Email, "correctpassword")
	require.NoError(t, err)
	require.Equal(t, 0, loggedIn.FailedAttempts)
	require.False(t, loggedIn.LockedUntil.Valid)
	require.True(t, loggedIn.LastLoginAt.Valid)
	require.Equal(t, now, loggedIn.LastLoginAt.Time)

	mockUserRepo.AssertExpectations(t)
}

func TestPasswordLogin_LapsedLockLifts(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := activeTestUser()
	user.Status = models.AccountLockedStatus
	user.FailedAttempts = 5
	user.LockedUntil = sql.NullTime{Time: now.Add(-time.Minute), Valid: true}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByEmail", user.Email).Return(user, true, nil)
	mockUserRepo.On("RecordLogin", user.ID, now).Return(nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	loggedIn, err := authenticator.PasswordLogin(user.Email, "correctpassword")
	require.NoError(t, err)
	require.Equal(t, 0, loggedIn.FailedAttempts)
	require.False(t, loggedIn.LockedUntil.Valid)

	mockUserRepo.AssertExpectations(t)
}
