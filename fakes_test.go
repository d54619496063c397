package auth_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	auth "github.com/veluna/go-auth"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// The fakes below are clock-aware in-memory implementations of the storage
// ports. They honor the same contracts as the bun-backed repositories so the
// orchestration flows can be exercised end to end without a database.

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*auth.User
	byEmail map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    map[uuid.UUID]*auth.User{},
		byEmail: map[string]*auth.User{},
	}
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUsers) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byEmail[user.Email]; taken {
		return nil, auth.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	f.byID[clone.ID] = &clone
	f.byEmail[clone.Email] = &clone
	copied := clone
	return &copied, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

type fakeSessionRecord struct {
	userID    uuid.UUID
	expiresAt time.Time
}

type fakeSessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	clock  clockwork.Clock
	tokens map[string]fakeSessionRecord
}

func newFakeSessions(ttl time.Duration, clock clockwork.Clock) *fakeSessions {
	return &fakeSessions{
		ttl:    ttl,
		clock:  clock,
		tokens: map[string]fakeSessionRecord{},
	}
}

func (f *fakeSessions) Issue(_ context.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, auth.RefreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = fakeSessionRecord{
		userID:    userID,
		expiresAt: f.clock.Now().Add(f.ttl),
	}
	return token, nil
}

func (f *fakeSessions) Redeem(_ context.Context, token string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, auth.ErrSessionNotFound
	}
	if !record.expiresAt.After(f.clock.Now()) {
		delete(f.tokens, token)
		return uuid.Nil, auth.ErrSessionExpired
	}
	return record.userID, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	delete(f.tokens, token)
	return ok, nil
}

func (f *fakeSessions) PurgeExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.clock.Now()
	var purged int64
	for token, record := range f.tokens {
		if !record.expiresAt.After(now) {
			delete(f.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type fakeResets struct {
	mu     sync.Mutex
	ttl    time.Duration
	clock  clockwork.Clock
	byID   map[uuid.UUID]*auth.ResetToken
	tokens map[string]uuid.UUID
}

func newFakeResets(ttl time.Duration, clock clockwork.Clock) *fakeResets {
	return &fakeResets{
		ttl:    ttl,
		clock:  clock,
		byID:   map[uuid.UUID]*auth.ResetToken{},
		tokens: map[string]uuid.UUID{},
	}
}

func (f *fakeResets) Create(_ context.Context, userID uuid.UUID, email string) (*auth.ResetToken, error) {
	raw := make([]byte, auth.ResetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	record := &auth.ResetToken{
		ID:        uuid.New(),
		Token:     hex.EncodeToString(raw),
		UserID:    userID,
		Email:     email,
		ExpiresAt: f.clock.Now().Add(f.ttl),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[record.ID] = record
	f.tokens[record.Token] = record.ID
	clone := *record
	return &clone, nil
}

func (f *fakeResets) FindActive(_ context.Context, token string) (*auth.ResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return nil, auth.ErrResetTokenInvalid
	}
	record := f.byID[id]
	if record.Used {
		return nil, auth.ErrResetTokenInvalid
	}
	clone := *record
	return &clone, nil
}

func (f *fakeResets) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.byID[id]
	if !ok || record.Used {
		return false, nil
	}
	record.Used = true
	usedAt := f.clock.Now()
	record.UsedAt = &usedAt
	return true, nil
}

func (f *fakeResets) PurgeExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.clock.Now()
	var purged int64
	for id, record := range f.byID {
		if !record.ExpiresAt.After(now) {
			delete(f.tokens, record.Token)
			delete(f.byID, id)
			purged++
		}
	}
	return purged, nil
}

type fakeThrottleStore struct {
	mu      sync.Mutex
	records map[string]*auth.LoginAttempt
	getErr  error
	saveErr error
}

func newFakeThrottleStore() *fakeThrottleStore {
	return &fakeThrottleStore{records: map[string]*auth.LoginAttempt{}}
}

func (f *fakeThrottleStore) Get(_ context.Context, ip string) (*auth.LoginAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[ip]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeThrottleStore) Save(_ context.Context, record *auth.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *record
	f.records[record.IPAddress] = &clone
	return nil
}

func (f *fakeThrottleStore) Delete(_ context.Context, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, ip)
	return nil
}

func (f *fakeThrottleStore) PurgeStale(_ context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for ip, record := range f.records {
		if record.LastAttempt.Before(olderThan) {
			delete(f.records, ip)
			purged++
		}
	}
	return purged, nil
}

// recordingSink captures events in order for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) actions() []auth.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.ActivityAction, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}
