// Package token issues and resolves stateless bearer credentials.
//
// A credential is an HS256-signed JWT embedding the user id, username, and
// email as claims. Expiry is the only invalidation mechanism; there is no
// revocation list.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/taskdeck/internal/platform/config"
	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
)

const signingMethod = "HS256"

// ErrUnauthenticated classifies every credential failure: missing token,
// bad signature, wrong algorithm, expiry, and unparseable identity claims.
var ErrUnauthenticated = apperrors.New(apperrors.CodeUnauthenticated, "credential is missing or invalid")

// Config defines how bearer credentials are signed and validated.
type Config struct {
	Secret string        `env:"TASKDECK_JWT_SECRET"`
	TTL    time.Duration `env:"TASKDECK_JWT_TTL" envDefault:"1h"`
}

// LoadConfigFromEnv reads signing configuration. A missing or empty secret
// is an error so process startup can fail fast.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse token env: %w", err)
	}
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	if cfg.Secret == "" {
		return Config{}, fmt.Errorf("TASKDECK_JWT_SECRET is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return cfg, nil
}

// Identity captures the user claims embedded in a credential.
type Identity struct {
	ID       int64
	Username string
	Email    string
}

// claims is the internal claims type used for JWT signing and parsing.
type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service signs and resolves bearer credentials with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a credential service. A nil now falls back to time.Now.
func NewService(cfg Config, now func() time.Time) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue mints a signed credential for the given identity, valid for the
// configured TTL from issuance.
func (s *Service) Issue(identity Identity) (string, error) {
	if s == nil {
		return "", fmt.Errorf("token service is not configured")
	}
	issuedAt := s.now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
		Username: identity.Username,
		Email:    identity.Email,
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Resolve verifies a credential's signature and expiry and extracts the
// user id claim. It is a pure classification function: every failure mode
// maps to ErrUnauthenticated and nothing escapes as a fault.
func (s *Service) Resolve(credential string) (int64, error) {
	if s == nil {
		return 0, ErrUnauthenticated
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return 0, ErrUnauthenticated
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(credential, &parsed, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		// Signature, algorithm, and malformed-token failures all collapse
		// into the same caller-facing classification.
		return 0, ErrUnauthenticated
	}

	if parsed.ExpiresAt == nil {
		return 0, ErrUnauthenticated
	}
	now := s.now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return 0, ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(parsed.Subject), 10, 64)
	if err != nil {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}
