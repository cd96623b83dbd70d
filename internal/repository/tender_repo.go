package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	ListTenders(ctx context.Context, filter models.TenderFilter) ([]models.Tender, int, error)
	GetTenderByID(ctx context.Context, tenderID string) (*models.Tender, error)
	CreateTender(ctx context.Context, tender models.Tender) (*models.Tender, error)
	UpdateTender(ctx context.Context, tender models.Tender) (*models.Tender, error)
	DeleteTender(ctx context.Context, tenderID string) error
	AssignTender(ctx context.Context, tenderID string, userID *string) error
	CountDuplicateTenders(ctx context.Context) (int64, error)
	RemoveDuplicateTenders(ctx context.Context) (int64, error)
}

const tenderColumns = `id::text, title, organization, description, value, deadline, status, source,
	ai_score, assigned_to::text, requirements, link, version, created_at, updated_at`

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTender(row rowScanner) (*models.Tender, error) {
	var t models.Tender
	var requirements []string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Organization,
		&t.Description,
		&t.Value,
		&t.Deadline,
		&t.Status,
		&t.Source,
		&t.AIScore,
		&t.AssignedTo,
		&requirements,
		&t.Link,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if requirements == nil {
		requirements = []string{}
	}
	t.Requirements = requirements
	return &t, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildTenderWhere собирает условие WHERE по фильтру и возвращает аргументы запроса.
func buildTenderWhere(filter models.TenderFilter) (string, []interface{}) {
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.Search != "" {
		filters = append(filters, fmt.Sprintf("(title ILIKE $%d OR organization ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	if filter.Source != "" {
		filters = append(filters, fmt.Sprintf("source = $%d", argIndex))
		args = append(args, filter.Source)
		argIndex++
	}

	if filter.Status != "" {
		filters = append(filters, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(filter.Status))
	} else {
		filters = append(filters, fmt.Sprintf("status <> '%s'", models.MissedOpportunityTender))
	}

	return " WHERE " + strings.Join(filters, " AND "), args
}

// ListTenders возвращает страницу тендеров и общее число подходящих записей.
func (r *PostgresTenderRepository) ListTenders(ctx context.Context, filter models.TenderFilter) ([]models.Tender, int, error) {
	where, args := buildTenderWhere(filter)

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM tender`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenders: %w", err)
	}

	argIndex := len(args) + 1
	query := `SELECT ` + tenderColumns + ` FROM tender` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenders: %w", err)
	}
	defer rows.Close()

	tenders := []models.Tender{}
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, 0, err
		}
		tenders = append(tenders, *tender)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tenders, total, nil
}

// GetTenderByID возвращает тендер по ID.
func (r *PostgresTenderRepository) GetTenderByID(ctx context.Context, tenderID string) (*models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE id = $1`
	tender, err := scanTender(r.DB.QueryRow(ctx, query, tenderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("tender not found")
	}
	if err != nil {
		return nil, err
	}
	return tender, nil
}

// CreateTender создает новый тендер.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, tender models.Tender) (*models.Tender, error) {
	now := time.Now().UTC()
	tender.ID = uuid.New().String()
	tender.Version = 1
	tender.CreatedAt = now
	tender.UpdatedAt = now
	if tender.Requirements == nil {
		tender.Requirements = []string{}
	}

	_, err := r.DB.Exec(ctx, `
       INSERT INTO tender (id, title, organization, description, value, deadline, status, source,
                           ai_score, assigned_to, requirements, link, version, created_at, updated_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
   `,
		tender.ID,
		tender.Title,
		tender.Organization,
		tender.Description,
		tender.Value,
		tender.Deadline,
		tender.Status,
		tender.Source,
		tender.AIScore,
		tender.AssignedTo,
		tender.Requirements,
		tender.Link,
		tender.Version,
		tender.CreatedAt,
		tender.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tender: %w", err)
	}
	return &tender, nil
}

// UpdateTender перезаписывает изменяемые поля тендера.
func (r *PostgresTenderRepository) UpdateTender(ctx context.Context, tender models.Tender) (*models.Tender, error) {
	if tender.Requirements == nil {
		tender.Requirements = []string{}
	}
	updateQuery := `UPDATE tender SET title = $1, organization = $2, description = $3, value = $4, deadline = $5,
	                status = $6, source = $7, ai_score = $8, requirements = $9, link = $10,
	                version = version + 1, updated_at = $11
	                WHERE id = $12 RETURNING ` + tenderColumns
	updated, err := scanTender(r.DB.QueryRow(
		ctx,
		updateQuery,
		tender.Title,
		tender.Organization,
		tender.Description,
		tender.Value,
		tender.Deadline,
		tender.Status,
		tender.Source,
		tender.AIScore,
		tender.Requirements,
		tender.Link,
		time.Now().UTC(),
		tender.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("tender not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tender: %w", err)
	}
	return updated, nil
}

// DeleteTender удаляет тендер.
func (r *PostgresTenderRepository) DeleteTender(ctx context.Context, tenderID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tender WHERE id = $1`, tenderID)
	if err != nil {
		return fmt.Errorf("failed to delete tender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("tender not found")
	}
	return nil
}

// AssignTender назначает тендер пользователю; nil снимает назначение.
func (r *PostgresTenderRepository) AssignTender(ctx context.Context, tenderID string, userID *string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tender SET assigned_to = $1, version = version + 1, updated_at = $2 WHERE id = $3`,
		userID, time.Now().UTC(), tenderID)
	if err != nil {
		return fmt.Errorf("failed to assign tender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("tender not found")
	}
	return nil
}

// CountDuplicateTenders возвращает число тендеров, которые будут удалены как дубликаты.
func (r *PostgresTenderRepository) CountDuplicateTenders(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) - COUNT(DISTINCT title) FROM tender`).Scan(&count)
	return count, err
}

// RemoveDuplicateTenders оставляет по одному тендеру на заголовок, самый ранний по created_at.
func (r *PostgresTenderRepository) RemoveDuplicateTenders(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, `
		DELETE FROM tender
		WHERE id NOT IN (
			SELECT DISTINCT ON (title) id
			FROM tender
			ORDER BY title, created_at ASC, id ASC
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove duplicate tenders: %w", err)
	}
	return tag.RowsAffected(), nil
}
