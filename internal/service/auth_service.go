package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any admin login failure. The response
// stays inline and the form remains editable; there is no lockout.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenType distinguishes token audiences. Students are anonymous in this
// portal, so only admin tokens exist today.
type TokenType string

const TokenTypeAdmin TokenType = "admin"

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Username  string    `json:"username"`
}

// AuthService handles admin authentication and JWT lifecycle.
type AuthService struct {
	cfg   *config.Config
	store *store.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, st *store.Store) *AuthService {
	return &AuthService{cfg: cfg, store: st}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates an admin and returns a signed token plus the account.
// A provisioned admin record takes precedence; fresh installs fall back to
// the bootstrap credentials from config.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.Admin, error) {
	admin, err := s.store.LoadAdmin(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load admin: %w", err)
	}

	if admin != nil {
		if admin.Username != username {
			return "", nil, ErrInvalidCredentials
		}
		if err := s.CheckPassword(admin.PasswordHash, password); err != nil {
			return "", nil, ErrInvalidCredentials
		}
	} else {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.BootstrapAdminUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.BootstrapAdminPass)) == 1
		if !userOK || !passOK {
			return "", nil, ErrInvalidCredentials
		}
		admin = &model.Admin{Username: s.cfg.BootstrapAdminUser, Name: "Administrator"}
	}

	token, err := s.GenerateAdminToken(admin.Username)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, admin, nil
}

// GenerateAdminToken creates a signed HS256 JWT for an admin.
func (s *AuthService) GenerateAdminToken(username string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeAdmin,
		Username:  username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
