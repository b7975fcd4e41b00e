package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrLoginDisabled      = errors.New("teacher login is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const teacherSubject = "teacher"

// Service checks the single configured teacher credential and issues short
// lived session tokens. There is no account store: the platform has exactly
// one teacher role, configured at deploy time.
type Service struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
}

type ServiceConfig struct {
	// PasswordHash is a bcrypt hash of the teacher password. When empty and
	// Password is set, the hash is derived at startup.
	PasswordHash string
	Password     string
	JWTSecret    string
	TokenTTL     time.Duration
}

func NewService(cfg ServiceConfig) (*Service, error) {
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 && cfg.Password != "" {
		derived, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash teacher password: %w", err)
		}
		hash = derived
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &Service{
		passwordHash: hash,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     ttl,
	}, nil
}

// Login verifies the teacher password and returns a signed session token.
func (s *Service) Login(password string) (string, time.Time, error) {
	if len(s.passwordHash) == 0 {
		return "", time.Time{}, ErrLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   teacherSubject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// VerifyToken validates a session token previously issued by Login.
func (s *Service) VerifyToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != teacherSubject {
		return ErrInvalidToken
	}
	return nil
}
