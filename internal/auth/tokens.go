package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies the app's own HS256 bearer tokens and wraps
// password hashing.
type Service struct {
	secret     []byte
	bcryptCost int
	tokenTTL   time.Duration
}

func NewService(secret string, bcryptCost int) *Service {
	return &Service{
		secret:     []byte(secret),
		bcryptCost: bcryptCost,
		tokenTTL:   7 * 24 * time.Hour,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

func (s *Service) ComparePassword(storedDigest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedDigest), []byte(password)) == nil
}

// CreateToken signs a bearer token carrying the user id and email.
func (s *Service) CreateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates the token and returns the user id it carries.
// Every failure collapses to ErrInvalidToken so callers cannot leak which
// check failed.
func (s *Service) VerifyToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
