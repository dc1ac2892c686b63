package utils

import (
	"errors"
	"fmt"
	"time"

	"journeylens/api/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the custom JWT claims for an analyst session.
// jwt.RegisteredClaims carries the standard fields (exp, iat, iss, ...).
type Claims struct {
	AnalystID int    `json:"analyst_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

const tokenIssuer = "journeylens-api"

// TokenManager signs and validates analyst tokens with an HMAC secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET_KEY is not set")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Generate issues a token for the given analyst.
func (m *TokenManager) Generate(analyst *models.Analyst) (string, error) {
	now := m.now()
	claims := &Claims{
		AnalystID: analyst.ID,
		Email:     analyst.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", analyst.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a token string.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
