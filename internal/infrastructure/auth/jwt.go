// Package auth provides JWT issuance/verification and password hashing.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by access tokens. Subject holds the decimal user id.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

type JWTService struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTService builds a signer with the given secret and token lifetime
// in seconds.
func NewJWTService(secret string, expirationSeconds int) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		expiration: time.Duration(expirationSeconds) * time.Second,
	}
}

// Generate signs an HS256 token for the user.
func (s *JWTService) Generate(userID uint, email string, isAdmin bool) (string, int64, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, int64(s.expiration.Seconds()), nil
}

// Verify parses and validates a token string.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// VerifyUserID validates a token and returns the user id it was issued to.
func (s *JWTService) VerifyUserID(tokenString string) (uint, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}
