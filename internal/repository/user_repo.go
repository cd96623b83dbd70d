package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// UserRepository - интерфейс хранилища учётных записей.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

const userColumns = `id::text, username, password_hash, email, name, role, created_at`

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresUserRepository создаёт новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername ищет пользователя по точному совпадению логина.
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("user not found")
	}
	return user, err
}

// GetUserByID ищет пользователя по ID.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("user not found")
	}
	return user, err
}

// ListUsers возвращает всех пользователей, отсортированных по логину.
func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// CreateUser добавляет пользователя. Хэш пароля должен быть уже посчитан.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := r.DB.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, email, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Name,
		user.Role,
		user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewValidationError("username already exists")
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

// isUniqueViolation проверяет, что ошибка Postgres - нарушение уникальности (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pq.ErrorCode(pgErr.Code).Name() == "unique_violation"
}
