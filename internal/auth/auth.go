// Package auth resolves the caller's identity from a bearer credential and
// issues credentials for authenticated users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

// ErrUnauthenticated indicates a missing, malformed or expired credential, or
// one referencing a user that no longer exists or is inactive.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// ErrInvalidCredentials indicates a failed email/password login.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// Identity is the resolved caller of an operation.
type Identity struct {
	ID   int64
	Role domain.Role
	Name string
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserSource looks up user accounts during identity resolution.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service issues and resolves bearer credentials.
type Service struct {
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	users      UserSource
}

// New constructs an auth service. users is consulted on every Resolve so a
// deactivated account loses access immediately, not at token expiry.
func New(secret string, ttl time.Duration, bcryptCost int, users UserSource) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, bcryptCost: bcryptCost, users: users}
}

// Issue signs a token carrying the user's id and role.
func (s *Service) Issue(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storerate",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a bearer token and returns the caller's identity. The user
// row is re-checked so tokens of deleted or deactivated accounts fail.
func (s *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, err
	}
	if !user.IsActive {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{ID: user.ID, Role: user.Role, Name: user.Name}, nil
}

// Login verifies an email/password pair and issues a token for the account.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}
	if !user.IsActive {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err := s.CheckPassword(user, password); err != nil {
		return "", domain.User{}, err
	}

	token, err := s.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *Service) CheckPassword(user domain.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword hashes a plaintext password at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
