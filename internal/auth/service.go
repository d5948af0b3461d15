package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingClaim  = errors.New("token is missing a required claim")
)

// DefaultTTL is the lifetime of tokens minted by IssueToken
const DefaultTTL = 24 * time.Hour

// Identity is the caller described by a validated token
type Identity struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse is returned to tooling that mints tokens
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service validates bearer tokens issued by the identity provider. It can also
// mint tokens with the same secret for the CLI and tests.
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a new token service
func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret, ttl: DefaultTTL, now: time.Now}
}

// WithTTL returns a copy of the service that mints tokens with the given lifetime
func (s *Service) WithTTL(ttl time.Duration) *Service {
	c := *s
	c.ttl = ttl
	return &c
}

// IssueToken signs an HS256 token for the given user
func (s *Service) IssueToken(userID, username string) (*TokenResponse, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates a JWT token and returns the identity it carries.
// A missing username falls back to the user id.
func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		// Tokens from other issuers carry the id in sub
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id", ErrMissingClaim)
	}

	identity := &Identity{UserID: userID}
	identity.Username, _ = claims["username"].(string)
	if identity.Username == "" {
		identity.Username = userID
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}

	return identity, nil
}
