package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
)

const issuer = "bms"

// Claims - содержимое токена сессии.
type Claims struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Name     string      `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет подписанные токены сессии.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создаёт новый экземпляр TokenManager.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL возвращает время жизни токена.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue подписывает токен для сессии.
func (m *TokenManager) Issue(session models.Session) (string, error) {
	now := m.now()
	claims := Claims{
		Username: session.Username,
		Email:    session.Email,
		Role:     session.Role,
		Name:     session.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   session.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет подпись и срок действия токена и возвращает сессию.
func (m *TokenManager) Parse(tokenString string) (*models.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return &models.Session{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		Name:     claims.Name,
	}, nil
}
