package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// LoginResult is the session pair handed to a freshly authenticated client.
type LoginResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *UserSummary `json:"user"`
}

// Auther orchestrates the account lifecycle over the storage and token ports.
// It owns policy (throttling, credential checks, reset semantics) and leaves
// persistence and delivery to the injected implementations.
type Auther struct {
	users    CredentialStore
	sessions Sessions
	resets   ResetTokens
	tokens   TokenService
	throttle Throttle
	notifier NotificationSender
	activity ActivitySink
	logger   Logger
	clock    clockwork.Clock

	bcryptCost    int
	resetLinkBase string
}

// NewAuthenticator builds an Auther over the required ports. Optional
// collaborators default to no-ops and can be swapped via the With* chain.
func NewAuthenticator(users CredentialStore, sessions Sessions, resets ResetTokens, tokens TokenService) *Auther {
	return &Auther{
		users:         users,
		sessions:      sessions,
		resets:        resets,
		tokens:        tokens,
		throttle:      noopThrottle{},
		notifier:      noopNotificationSender{},
		activity:      noopActivitySink{},
		logger:        defLogger{},
		clock:         clockwork.NewRealClock(),
		bcryptCost:    DefaultBcryptCost,
		resetLinkBase: "http://localhost:3000",
	}
}

// WithThrottle installs the login rate limiter.
func (a *Auther) WithThrottle(throttle Throttle) *Auther {
	if throttle != nil {
		a.throttle = throttle
	}
	return a
}

// WithNotifier installs the reset link delivery channel.
func (a *Auther) WithNotifier(notifier NotificationSender) *Auther {
	a.notifier = normalizeNotificationSender(notifier)
	return a
}

// WithActivitySink installs the audit event consumer.
func (a *Auther) WithActivitySink(sink ActivitySink) *Auther {
	a.activity = normalizeActivitySink(sink)
	return a
}

// WithLogger overrides the logger.
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithClock overrides the time source.
func (a *Auther) WithClock(clock clockwork.Clock) *Auther {
	if clock != nil {
		a.clock = clock
	}
	return a
}

// WithBcryptCost overrides the password hashing cost.
func (a *Auther) WithBcryptCost(cost int) *Auther {
	if cost > 0 {
		a.bcryptCost = cost
	}
	return a
}

// WithResetLinkBase sets the frontend base URL used to build reset links.
func (a *Auther) WithResetLinkBase(base string) *Auther {
	if base != "" {
		a.resetLinkBase = base
	}
	return a
}

// Signup registers a new account with the default user role. It does not
// open a session: the client is expected to log in afterwards.
func (a *Auther) Signup(ctx context.Context, req SignupRequest) (*UserSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	existing, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPasswordWithCost(req.Password, a.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := a.users.Create(ctx, &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		return nil, err
	}

	a.record(ctx, ActivityEvent{
		UserID:    &user.ID,
		Email:     user.Email,
		Action:    ActionSignup,
		IPAddress: req.SourceIP,
		UserAgent: req.UserAgent,
	})

	return user.Summary(), nil
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords produce the same error, and both count against the caller's IP.
func (a *Auther) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	if err := a.throttle.Check(ctx, req.SourceIP, req.Email); err != nil {
		return nil, err
	}

	user, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		a.recordLoginFailed(ctx, req, nil)
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(req.Password, user.PasswordHash); err != nil {
		a.recordLoginFailed(ctx, req, &user.ID)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := a.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	a.throttle.Reset(ctx, req.SourceIP)

	a.record(ctx, ActivityEvent{
		UserID:    &user.ID,
		Email:     user.Email,
		Action:    ActionLoginSuccess,
		IPAddress: req.SourceIP,
		UserAgent: req.UserAgent,
	})

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Summary(),
	}, nil
}

// Logout revokes the refresh session. Revoking a token that is already gone
// still succeeds; logout is idempotent from the client's point of view.
func (a *Auther) Logout(ctx context.Context, req LogoutRequest) error {
	if err := req.Validate(); err != nil {
		return invalidRequest(err)
	}

	existed, err := a.sessions.Revoke(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	if existed {
		a.record(ctx, ActivityEvent{
			Action:    ActionLogout,
			IPAddress: req.SourceIP,
			UserAgent: req.UserAgent,
		})
	}

	return nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated and stays valid until expiry or logout.
func (a *Auther) Refresh(ctx context.Context, req RefreshRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", invalidRequest(err)
	}

	userID, err := a.sessions.Redeem(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return "", ErrInvalidSession
		}
		return "", err
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	return a.tokens.IssueAccessToken(user.ID, user.Email)
}

// CurrentUser resolves the account behind an access token. Token validation
// errors pass through untouched so clients can tell expiry from tampering.
func (a *Auther) CurrentUser(ctx context.Context, accessToken string) (*UserSummary, error) {
	claims, err := a.tokens.Validate(accessToken)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user.Summary(), nil
}

// RequestPasswordReset starts the reset flow. Its success response is
// identical whether or not the email has an account, so it cannot be used to
// enumerate users. Notification failures are logged and swallowed for the
// same reason.
func (a *Auther) RequestPasswordReset(ctx context.Context, req ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return invalidRequest(err)
	}

	user, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	reset, err := a.resets.Create(ctx, user.ID, user.Email)
	if err != nil {
		return err
	}

	link := a.resetLinkBase + "/reset-password?token=" + reset.Token
	if err := a.notifier.SendPasswordReset(ctx, user.Email, link); err != nil {
		a.logger.Warn("failed to deliver password reset for %s: %v", user.Email, err)
	}

	a.record(ctx, ActivityEvent{
		UserID:    &user.ID,
		Email:     user.Email,
		Action:    ActionPasswordResetRequest,
		IPAddress: req.SourceIP,
		UserAgent: req.UserAgent,
	})

	return nil
}

// ResetPassword consumes a reset token and replaces the password. The owning
// account must still exist before the token is consumed, and the used flag is
// claimed before the password write so concurrent consumers cannot both
// succeed. Existing refresh sessions are left untouched.
func (a *Auther) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return invalidRequest(err)
	}

	if len(req.NewPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	reset, err := a.resets.FindActive(ctx, req.Token)
	if err != nil {
		return err
	}

	// the token stays usable through the exact expiry instant
	if a.clock.Now().After(reset.ExpiresAt) {
		return ErrResetTokenExpired
	}

	user, err := a.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := HashPasswordWithCost(req.NewPassword, a.bcryptCost)
	if err != nil {
		return err
	}

	claimed, err := a.resets.Claim(ctx, reset.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrResetTokenInvalid
	}

	if err := a.users.UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
		return err
	}

	a.record(ctx, ActivityEvent{
		UserID:    &reset.UserID,
		Email:     reset.Email,
		Action:    ActionPasswordResetSuccess,
		IPAddress: req.SourceIP,
		UserAgent: req.UserAgent,
	})

	return nil
}

func (a *Auther) recordLoginFailed(ctx context.Context, req LoginRequest, userID *uuid.UUID) {
	a.record(ctx, ActivityEvent{
		UserID:    userID,
		Email:     req.Email,
		Action:    ActionLoginFailed,
		IPAddress: req.SourceIP,
		UserAgent: req.UserAgent,
	})
}

// record dispatches an activity event, stamping the occurrence time. Sink
// failures never affect the caller.
func (a *Auther) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = a.clock.Now()
	}
	if err := a.activity.Record(ctx, event); err != nil {
		a.logger.Warn("failed to record %s activity: %v", event.Action, err)
	}
}
