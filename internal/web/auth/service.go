// Package auth implements admin login, the session cookie and the admin guard.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/internal/web/content/dao"
	"github.com/Laisky/amc-site/internal/web/content/model"
	idp "github.com/Laisky/amc-site/library/auth"
	"github.com/Laisky/amc-site/library/jwt"
	"github.com/Laisky/amc-site/library/metrics"
	"github.com/Laisky/amc-site/library/throttle"
)

const (
	// DefaultSessionTTL is used when no ttl option is given.
	DefaultSessionTTL = 12 * time.Hour
	// fieldIsAdmin flags an allowlisted account in the admins collection.
	fieldIsAdmin = "isAdmin"
)

var (
	// ErrLoginFailed is the only error a login reports to clients.
	ErrLoginFailed = errors.New("invalid email or password")
	// ErrTooManyAttempts is returned when the caller exceeded the login rate.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrUnauthorized is returned for missing, invalid or non-admin sessions.
	ErrUnauthorized = errors.New("admin session required")
	// ErrLoginDisabled is returned when no identity provider is configured.
	ErrLoginDisabled = errors.New("login is not configured")
)

// Service verifies credentials and issues admin sessions.
type Service struct {
	logger   glog.Logger
	store    dao.Store
	verifier idp.PasswordVerifier
	signer   *jwt.JWT
	throttle *throttle.KeyedThrottle
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service) error

// WithSessionTTL sets how long an issued session stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl <= 0 {
			return errors.Errorf("session ttl must be positive, got %s", ttl)
		}

		s.ttl = ttl
		return nil
	}
}

// WithLoginThrottle limits login attempts per client.
func WithLoginThrottle(t *throttle.KeyedThrottle) Option {
	return func(s *Service) error {
		s.throttle = t
		return nil
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.now = now
		return nil
	}
}

// NewService creates the service. verifier may be nil, logins then fail with ErrLoginDisabled.
func NewService(logger glog.Logger,
	store dao.Store,
	verifier idp.PasswordVerifier,
	signer *jwt.JWT,
	opts ...Option,
) (*Service, error) {
	if signer == nil {
		return nil, errors.New("session signer is required")
	}

	s := &Service{
		logger:   logger,
		store:    store,
		verifier: verifier,
		signer:   signer,
		ttl:      DefaultSessionTTL,
		now:      func() time.Time { return gutils.Clock.GetUTCNow() },
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "apply option")
		}
	}

	return s, nil
}

// TTL returns the session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login verifies email/password for client and returns a signed session token.
// Every credential or allowlist failure is reported as ErrLoginFailed.
func (s *Service) Login(ctx context.Context, client, email, password string) (string, *jwt.SessionClaims, error) {
	logger := s.logger.With(zap.String("client", client))
	now := s.now()

	if s.throttle != nil && !s.throttle.Allow(client, now) {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return "", nil, ErrTooManyAttempts
	}
	if s.verifier == nil {
		return "", nil, ErrLoginDisabled
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return "", nil, ErrLoginFailed
	}

	identity, err := s.verifier.VerifyPassword(ctx, email, password)
	if err != nil {
		logger.Info("identity provider rejected login", zap.Error(err))
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return "", nil, ErrLoginFailed
	}

	ok, err := s.IsAdmin(ctx, identity.UID, identity.Email)
	if err != nil {
		logger.Error("load admin allowlist", zap.Error(err))
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", nil, ErrLoginFailed
	}
	if !ok {
		logger.Warn("login by non admin account", zap.String("uid", identity.UID))
		metrics.LoginAttempts.WithLabelValues("forbidden").Inc()
		return "", nil, ErrLoginFailed
	}

	claims := jwt.NewSessionClaims(identity.UID, identity.Email, true, now, s.ttl)
	token, err := s.signer.Sign(claims)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return "", nil, errors.Wrap(err, "sign session")
	}

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	logger.Info("admin logged in", zap.String("uid", identity.UID))
	return token, claims, nil
}

// IsAdmin looks up the allowlist by uid, then by lower-cased email.
func (s *Service) IsAdmin(ctx context.Context, uid, email string) (bool, error) {
	for _, id := range []string{uid, strings.ToLower(strings.TrimSpace(email))} {
		if id == "" {
			continue
		}

		doc, err := s.store.Get(ctx, model.ColAdmins, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}

			return false, errors.Wrapf(err, "get admin %q", id)
		}

		if flag, _ := doc.Data[fieldIsAdmin].(bool); flag {
			return true, nil
		}
	}

	return false, nil
}

// ParseSession validates token and returns its claims.
func (s *Service) ParseSession(token string) (*jwt.SessionClaims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	if !claims.IsAdmin {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// Authorize validates token and re-checks the admin allowlist.
func (s *Service) Authorize(ctx context.Context, token string) (*jwt.SessionClaims, error) {
	claims, err := s.ParseSession(token)
	if err != nil {
		return nil, err
	}

	ok, err := s.IsAdmin(ctx, claims.Subject, claims.Email)
	if err != nil {
		return nil, errors.Wrap(err, "check admin allowlist")
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnauthorized, "admin %q revoked", claims.Subject)
	}

	return claims, nil
}
