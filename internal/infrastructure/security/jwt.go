package security

import (
	"errors"
	"time"

	"careermate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type claims struct {
	Username string `json:"username"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *TokenManager) Generate(userID, username string) (string, string, error) {
	now := time.Now()

	accessToken, err := m.sign(userID, username, tokenTypeAccess, now, m.accessTTL, m.accessSecret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := m.sign(userID, username, tokenTypeRefresh, now, m.refreshTTL, m.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (m *TokenManager) ValidateAccessToken(tokenStr string) (domain.Identity, error) {
	return m.validate(tokenStr, tokenTypeAccess, m.accessSecret)
}

func (m *TokenManager) ValidateRefreshToken(tokenStr string) (domain.Identity, error) {
	return m.validate(tokenStr, tokenTypeRefresh, m.refreshSecret)
}

func (m *TokenManager) sign(userID, username, typ string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: username,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

func (m *TokenManager) validate(tokenStr, typ string, secret []byte) (domain.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	if !token.Valid || c.Type != typ {
		return domain.Identity{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.Identity{}, errors.New("invalid token subject")
	}
	return domain.Identity{UserID: userID, Username: c.Username}, nil
}
