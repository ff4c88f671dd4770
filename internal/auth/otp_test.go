package auth

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cradoe/verime/internal/mocks"
	"github.com/cradoe/verime/internal/models"
)

// zeroReader feeds crypto/rand.Int nothing but zero bytes, which pins the
// generated number to 0.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestIssueChallenge(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mockOtpRepo := new(mocks.MockOtpRepo)
	mockOtpRepo.On("Replace", mock.MatchedBy(func(c *models.OtpChallenge) bool {
		return c.PhoneNumber == "+2348012345678" &&
			len(c.Code) == 6 &&
			c.ExpiresAt.Equal(now.Add(300*time.Second))
	})).Return("otp-1", nil)

	producer := mocks.NewMockProducer()

	authenticator := New(&Authenticator{
		OtpRepo: mockOtpRepo,
		Stream:  producer,
	})
	authenticator.now = func() time.Time { return now }

	challenge, err := authenticator.IssueChallenge("+2348012345678")
	require.NoError(t, err)
	require.Equal(t, "otp-1", challenge.ID)
	require.Len(t, challenge.Code, 6)
	for _, r := range challenge.Code {
		require.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", challenge.Code)
	}

	messages := producer.MessagesFor(SmsDispatchTopic)
	require.Len(t, messages, 1)

	var event SmsDispatchEvent
	require.NoError(t, json.Unmarshal([]byte(messages[0]), &event))
	require.Equal(t, "+2348012345678", event.PhoneNumber)
	require.Equal(t, challenge.Code, event.Code)

	mockOtpRepo.AssertExpectations(t)
}

func TestIssueChallenge_ZeroPadsShortCodes(t *testing.T) {
	mockOtpRepo := new(mocks.MockOtpRepo)
	mockOtpRepo.On("Replace", mock.Anything).Return("otp-1", nil)

	authenticator := New(&Authenticator{
		OtpRepo: mockOtpRepo,
	})
	authenticator.rand = zeroReader{}

	challenge, err := authenticator.IssueChallenge("+2348012345678")
	require.NoError(t, err)
	require.Equal(t, "000000", challenge.Code)
}

func TestIssueChallenge_ConfiguredLength(t *testing.T) {
	mockOtpRepo := new(mocks.MockOtpRepo)
	mockOtpRepo.On("Replace", mock.Anything).Return("otp-1", nil)

	authenticator := New(&Authenticator{
		OtpRepo:   mockOtpRepo,
		OtpLength: 8,
	})

	challenge, err := authenticator.IssueChallenge("+2348012345678")
	require.NoError(t, err)
	require.Len(t, challenge.Code, 8)
}

func TestVerifyChallenge(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mockOtpRepo := new(mocks.MockOtpRepo)
	mockOtpRepo.On("MarkVerified", "+2348012345678", "123456", now).Return(true, nil)
	mockOtpRepo.On("MarkVerified", "+2348012345678", "000000", now).Return(false, nil)

	authenticator := New(&Authenticator{
		OtpRepo: mockOtpRepo,
	})
	authenticator.now = func() time.Time { return now }

	ok, err := authenticator.VerifyChallenge("+2348012345678", "123456")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = authenticator.VerifyChallenge("+2348012345678", "000000")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOtpLogin_ActivatesPendingAccount(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := &models.User{
		ID:          "user-1",
		PhoneNumber: "+2348012345678",
		Status:      models.AccountPendingStatus,
	}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByPhoneNumber", user.PhoneNumber).Return(user, true, nil)
	mockUserRepo.On("Activate", user.ID, now).Return(nil)
	mockUserRepo.On("RecordLogin", user.ID, now).Return(nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	loggedIn, err := authenticator.OtpLogin(user.PhoneNumber)
	require.NoError(t, err)
	require.Equal(t, models.AccountActiveStatus, loggedIn.Status)
	require.True(t, loggedIn.VerifiedAt.Valid)
	require.Equal(t, now, loggedIn.VerifiedAt.Time)
	require.True(t, loggedIn.LastLoginAt.Valid)

	mockUserRepo.AssertExpectations(t)
}

func TestOtpLogin_ActiveAccountSkipsActivation(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := &models.User{
		ID:          "user-1",
		PhoneNumber: "+2348012345678",
		Status:      models.AccountActiveStatus,
	}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByPhoneNumber", user.PhoneNumber).Return(user, true, nil)
	mockUserRepo.On("RecordLogin", user.ID, now).Return(nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	_, err := authenticator.OtpLogin(user.PhoneNumber)
	require.NoError(t, err)

	mockUserRepo.AssertNotCalled(t, "Activate")
	mockUserRepo.AssertExpectations(t)
}

func TestOtpLogin_SuspendedAccount(t *testing.T) {
	// A verified code must not hand a suspended account a session.
	user := &models.User{
		ID:          "user-1",
		PhoneNumber: "+2348012345678",
		Status:      models.AccountSuspendedStatus,
	}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByPhoneNumber", user.PhoneNumber).Return(user, true, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})

	_, err := authenticator.OtpLogin(user.PhoneNumber)
	require.ErrorIs(t, err, ErrAccountNotActive)

	mockUserRepo.AssertNotCalled(t, "RecordLogin")
}

func TestOtpLogin_LockedAccount(t *testing.T) {
	// An in-force lockout binds the OTP path just like the password path.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := &models.User{
		ID:          "user-1",
		PhoneNumber: "+2348012345678",
		Status:      models.AccountLockedStatus,
		LockedUntil: sql.NullTime{Time: now.Add(10 * time.Minute), Valid: true},
	}

	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByPhoneNumber", user.PhoneNumber).Return(user, true, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})
	authenticator.now = func() time.Time { return now }

	_, err := authenticator.OtpLogin(user.PhoneNumber)
	require.ErrorIs(t, err, ErrAccountLocked)

	mockUserRepo.AssertNotCalled(t, "RecordLogin")
}

func TestOtpLogin_UnknownNumber(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetByPhoneNumber", "+2348099999999").Return(nil, false, nil)

	authenticator := New(&Authenticator{UserRepo: mockUserRepo})

	_, err := authenticator.OtpLogin("+2348099999999")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCleanupExpired(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mockOtpRepo := new(mocks.MockOtpRepo)
	mockOtpRepo.On("DeleteExpired", now).Return(int64(2), nil)

	authenticator := New(&Authenticator{
		OtpRepo: mockOtpRepo,
	})
	authenticator.now = func() time.Time { return now }

	count, err := authenticator.CleanupExpired()
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
