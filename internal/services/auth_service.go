package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/auth"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"
)

// TokenIssuer выпускает токен сессии.
type TokenIssuer interface {
	Issue(session models.Session) (string, error)
}

type AuthService struct {
	Users  repository.UserRepository
	Tokens TokenIssuer
}

// NewAuthService создаёт новый экземпляр AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

// Login проверяет логин и пароль и выпускает токен сессии. Отсутствующий
// пользователь и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, string, error) {
	if username == "" || password == "" {
		return nil, "", models.NewValidationError("username and password are required")
	}

	var hash string
	user, err := s.Users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		hash = user.PasswordHash
	case errors.Is(err, models.ErrNotFound):
	default:
		return nil, "", storeError(err)
	}

	if !auth.CheckPassword(hash, password) {
		return nil, "", models.ErrInvalidCredentials
	}

	session := user.Session()
	token, err := s.Tokens.Issue(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return &session, token, nil
}

// CurrentUser возвращает актуальные данные пользователя сессии.
func (s *AuthService) CurrentUser(ctx context.Context, session *models.Session) (*models.User, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	user, err := s.Users.GetUserByID(ctx, session.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// ListUsers возвращает список пользователей для назначения тендеров.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// CreateUser хэширует пароль и добавляет пользователя.
func (s *AuthService) CreateUser(ctx context.Context, user models.User, password string) (*models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || password == "" {
		return nil, models.NewValidationError("username and password are required")
	}
	if len(password) < 8 {
		return nil, models.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordLength))
	}
	if !auth.KnownRole(user.Role) {
		return nil, models.NewValidationError(fmt.Sprintf("unknown role: %s", user.Role))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	created, err := s.Users.CreateUser(ctx, user)
	if err != nil {
		return nil, storeError(err)
	}
	return created, nil
}
