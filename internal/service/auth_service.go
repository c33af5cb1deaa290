package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid passphrase")
	ErrAuthDisabled         = errors.New("authentication is not configured")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid token")
)

// TokenSubject is the subject of every issued token. There is a single owner.
const TokenSubject = "owner"

const tokenIssuer = "climb-tracker"

// AuthService issues and checks device tokens for the single owner of the
// tracker. It is not a user account system.
type AuthService interface {
	// Enabled reports whether the API requires a token.
	Enabled() bool
	// IssueToken checks passphrase and returns a signed token.
	IssueToken(ctx context.Context, passphrase string) (token string, expiresAt time.Time, err error)
	// ValidateToken parses and verifies a token.
	ValidateToken(token string) (*TokenClaims, error)
}

// TokenClaims is the JWT payload.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// --- Service Implementation ---

type authService struct {
	passphraseHash []byte
	jwtSecret      string
	jwtExpiration  time.Duration
	clock          Clock
}

// NewAuthService creates an auth service. An empty passphraseHash disables
// authentication.
func NewAuthService(passphraseHash, jwtSecret string, jwtExpiration time.Duration, clock Clock) AuthService {
	if passphraseHash != "" && jwtSecret == "" {
		panic("JWT secret cannot be empty when auth is enabled") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	if clock == nil {
		clock = SystemClock
	}
	return &authService{
		passphraseHash: []byte(passphraseHash),
		jwtSecret:      jwtSecret,
		jwtExpiration:  jwtExpiration,
		clock:          clock,
	}
}

func (s *authService) Enabled() bool {
	return len(s.passphraseHash) > 0
}

func (s *authService) IssueToken(_ context.Context, passphrase string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAuthDisabled
	}
	if passphrase == "" {
		return "", time.Time{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(passphrase)); err != nil {
		return "", time.Time{}, ErrAuthenticationFailed
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.jwtExpiration)
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   TokenSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, ErrTokenGeneration
	}
	return token, expiresAt, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject != TokenSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
