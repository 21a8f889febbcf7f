// Package auth handles password hashing and JWT bearer sessions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Errors for authentication failures.
var (
	// ErrMissingToken indicates no bearer token was provided.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken indicates the bearer token is not valid.
	ErrInvalidToken = errors.New("auth: invalid bearer token")
	// ErrBadCredentials indicates the username/password pair is wrong.
	ErrBadCredentials = errors.New("auth: invalid credentials")
	// ErrForbidden indicates the session lacks the required role.
	ErrForbidden = errors.New("auth: admin role required")
)

// Claims are the JWT claims carried by a session token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates session tokens and hashes passwords.
type Service struct {
	secret     []byte
	bcryptCost int
	tokenTTL   time.Duration
	now        func() time.Time
}

// NewService creates an auth service. The secret signs HS256 session
// tokens; bcryptCost 0 selects bcrypt.DefaultCost.
func NewService(secret []byte, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		secret:     secret,
		bcryptCost: bcryptCost,
		tokenTTL:   24 * time.Hour,
		now:        time.Now,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether a plaintext password matches a stored hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken issues a signed session token for a user.
func (s *Service) GenerateToken(userID int64, username, role string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "presenza",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
// Returns ErrInvalidToken for anything that doesn't verify.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
