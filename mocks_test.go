package auth_test

import (
	"context"
	"time"

	auth "github.com/veluna/go-auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a testify mock for the CredentialStore port.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*auth.User)
	return created, args.Error(1)
}

func (m *MockCredentialStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

// MockSessions is a testify mock for the Sessions port.
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessions) Redeem(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *MockSessions) Revoke(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessions) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockResetTokens is a testify mock for the ResetTokens port.
type MockResetTokens struct {
	mock.Mock
}

func (m *MockResetTokens) Create(ctx context.Context, userID uuid.UUID, email string) (*auth.ResetToken, error) {
	args := m.Called(ctx, userID, email)
	token, _ := args.Get(0).(*auth.ResetToken)
	return token, args.Error(1)
}

func (m *MockResetTokens) FindActive(ctx context.Context, token string) (*auth.ResetToken, error) {
	args := m.Called(ctx, token)
	record, _ := args.Get(0).(*auth.ResetToken)
	return record, args.Error(1)
}

func (m *MockResetTokens) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockResetTokens) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockThrottleStore is a testify mock for the ThrottleStore port.
type MockThrottleStore struct {
	mock.Mock
}

func (m *MockThrottleStore) Get(ctx context.Context, ip string) (*auth.LoginAttempt, error) {
	args := m.Called(ctx, ip)
	record, _ := args.Get(0).(*auth.LoginAttempt)
	return record, args.Error(1)
}

func (m *MockThrottleStore) Save(ctx context.Context, record *auth.LoginAttempt) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockThrottleStore) Delete(ctx context.Context, ip string) error {
	args := m.Called(ctx, ip)
	return args.Error(0)
}

func (m *MockThrottleStore) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockActivitySink is a testify mock for the ActivitySink port.
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockNotificationSender is a testify mock for the NotificationSender port.
type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	args := m.Called(ctx, email, resetLink)
	return args.Error(0)
}
