package auth

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Defaults for the token and throttle lifecycles. These mirror the product
// contract and only change through configuration, never at runtime.
const (
	DefaultAccessTokenTTL    = 15 * time.Minute
	DefaultRefreshSessionTTL = 7 * 24 * time.Hour
	DefaultResetTokenTTL     = time.Hour
	DefaultThrottleWindow    = 15 * time.Minute
	DefaultThrottleBlock     = 15 * time.Minute
	DefaultThrottleRetention = 24 * time.Hour
	DefaultMaxLoginAttempts  = 5
	DefaultActivityBuffer    = 256
	DefaultReclaimInterval   = 10 * time.Minute
)

// Config holds the startup configuration for the auth core. The signing key
// is required: there is no insecure fallback value.
type Config struct {
	SigningKey string
	Issuer     string

	AccessTokenTTL    time.Duration
	RefreshSessionTTL time.Duration
	ResetTokenTTL     time.Duration

	BcryptCost int

	MaxLoginAttempts  int
	ThrottleWindow    time.Duration
	ThrottleBlock     time.Duration
	ThrottleRetention time.Duration

	ActivityBuffer  int
	ReclaimInterval time.Duration

	// FrontendURL is the base used to build password reset links.
	FrontendURL string
}

// NewConfig returns a Config with production defaults for everything except
// the signing key, which the caller must provide.
func NewConfig(signingKey string) Config {
	return Config{
		SigningKey:        signingKey,
		AccessTokenTTL:    DefaultAccessTokenTTL,
		RefreshSessionTTL: DefaultRefreshSessionTTL,
		ResetTokenTTL:     DefaultResetTokenTTL,
		BcryptCost:        DefaultBcryptCost,
		MaxLoginAttempts:  DefaultMaxLoginAttempts,
		ThrottleWindow:    DefaultThrottleWindow,
		ThrottleBlock:     DefaultThrottleBlock,
		ThrottleRetention: DefaultThrottleRetention,
		ActivityBuffer:    DefaultActivityBuffer,
		ReclaimInterval:   DefaultReclaimInterval,
		FrontendURL:       "http://localhost:3000",
	}
}

// LoadConfig builds a Config from the environment, optionally loading .env
// files first. Missing files are not an error; a missing AUTH_SIGNING_KEY is,
// loudly, at Validate time.
func LoadConfig(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to load env file").
				WithMetadata(map[string]any{"file": f})
		}
	}

	cfg := NewConfig(os.Getenv("AUTH_SIGNING_KEY"))
	cfg.Issuer = os.Getenv("AUTH_ISSUER")

	if v := os.Getenv("AUTH_FRONTEND_URL"); v != "" {
		cfg.FrontendURL = v
	}

	var err error
	if cfg.AccessTokenTTL, err = envDuration("AUTH_ACCESS_TOKEN_TTL", cfg.AccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshSessionTTL, err = envDuration("AUTH_REFRESH_SESSION_TTL", cfg.RefreshSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ResetTokenTTL, err = envDuration("AUTH_RESET_TOKEN_TTL", cfg.ResetTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = envInt("AUTH_BCRYPT_COST", cfg.BcryptCost); err != nil {
		return Config{}, err
	}
	if cfg.MaxLoginAttempts, err = envInt("AUTH_MAX_LOGIN_ATTEMPTS", cfg.MaxLoginAttempts); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate fails startup when the configuration is unusable. In particular a
// missing signing key is a hard error rather than a silent default.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required.Error("signing key is required")),
		validation.Field(&c.AccessTokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RefreshSessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.ResetTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.MaxLoginAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.ThrottleWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.ThrottleBlock, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.ThrottleRetention, validation.Required, validation.Min(time.Minute)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid auth configuration").
			WithTextCode(TextCodeValidation)
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryValidation, "invalid duration in environment").
			WithMetadata(map[string]any{"key": key, "value": v})
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryValidation, "invalid integer in environment").
			WithMetadata(map[string]any{"key": key, "value": v})
	}
	return n, nil
}
