package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"

	"github.com/google/uuid"
)

type TenderService struct {
	Repo  repository.TenderRepository
	Users repository.UserRepository
	now   func() time.Time
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, users repository.UserRepository) *TenderService {
	return &TenderService{Repo: repo, Users: users, now: time.Now}
}

// ListTenders возвращает отфильтрованную страницу тендеров.
func (s *TenderService) ListTenders(ctx context.Context, filter models.TenderFilter) (*models.TenderPage, error) {
	filter = filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported status: %s", filter.Status))
	}

	tenders, total, err := s.Repo.ListTenders(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	if tenders == nil {
		tenders = []models.Tender{}
	}
	return &models.TenderPage{
		Tenders:    tenders,
		Pagination: models.NewPagination(filter, total),
	}, nil
}

// GetTender возвращает тендер по ID.
func (s *TenderService) GetTender(ctx context.Context, tenderID string) (*models.Tender, error) {
	if _, err := uuid.Parse(tenderID); err != nil {
		return nil, models.NewNotFoundError("tender not found")
	}
	tender, err := s.Repo.GetTenderByID(ctx, tenderID)
	if err != nil {
		return nil, storeError(err)
	}
	return tender, nil
}

// CreateTender проверяет запрос и создает новый тендер.
func (s *TenderService) CreateTender(ctx context.Context, req models.TenderRequest) (*models.Tender, error) {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Deadline) == "" {
		missing = append(missing, "deadline")
	}
	if req.Value == nil {
		missing = append(missing, "value")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	deadline, err := models.ParseDeadline(req.Deadline)
	if err != nil {
		return nil, models.NewValidationError("invalid deadline, expected YYYY-MM-DD or RFC3339")
	}

	status := req.Status
	if status == "" {
		status = models.ActiveTender
	}

	tender := models.Tender{
		Title:        strings.TrimSpace(req.Title),
		Organization: req.Organization,
		Description:  req.Description,
		Value:        *req.Value,
		Deadline:     deadline,
		Status:       status,
		Source:       req.Source,
		AIScore:      req.AIScore,
		Requirements: req.Requirements,
		Link:         req.Link,
	}
	if err := validateTender(tender); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateTender(ctx, tender)
	if err != nil {
		return nil, storeError(err)
	}
	return created, nil
}

// UpdateTender применяет частичное обновление и проверяет итоговую запись.
func (s *TenderService) UpdateTender(ctx context.Context, tenderID string, patch models.TenderPatch) (*models.Tender, error) {
	if patch.Empty() {
		return nil, models.NewValidationError("no fields to update")
	}

	current, err := s.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	merged := *current
	if patch.Title != nil {
		merged.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Organization != nil {
		merged.Organization = *patch.Organization
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Value != nil {
		merged.Value = *patch.Value
	}
	if patch.Deadline != nil {
		deadline, err := models.ParseDeadline(*patch.Deadline)
		if err != nil {
			return nil, models.NewValidationError("invalid deadline, expected YYYY-MM-DD or RFC3339")
		}
		if deadline.Before(startOfDay(s.now())) {
			return nil, models.NewValidationError("deadline must not be in the past")
		}
		merged.Deadline = deadline
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Source != nil {
		merged.Source = *patch.Source
	}
	if patch.AIScore != nil {
		merged.AIScore = patch.AIScore
	}
	if patch.Requirements != nil {
		merged.Requirements = patch.Requirements
	}
	if patch.Link != nil {
		merged.Link = *patch.Link
	}

	if err := validateTender(merged); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateTender(ctx, merged)
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

// DeleteTender удаляет тендер.
func (s *TenderService) DeleteTender(ctx context.Context, tenderID string) error {
	if _, err := uuid.Parse(tenderID); err != nil {
		return models.NewNotFoundError("tender not found")
	}
	if err := s.Repo.DeleteTender(ctx, tenderID); err != nil {
		return storeError(err)
	}
	return nil
}

// AssignTender назначает тендер пользователю или снимает назначение.
func (s *TenderService) AssignTender(ctx context.Context, tenderID string, userID *string) error {
	if _, err := uuid.Parse(tenderID); err != nil {
		return models.NewNotFoundError("tender not found")
	}
	if userID != nil {
		if _, err := uuid.Parse(*userID); err != nil {
			return models.NewValidationError("user does not exist")
		}
		if _, err := s.Users.GetUserByID(ctx, *userID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewValidationError("user does not exist")
			}
			return storeError(err)
		}
	}
	if err := s.Repo.AssignTender(ctx, tenderID, userID); err != nil {
		return storeError(err)
	}
	return nil
}

func validateTender(t models.Tender) error {
	if t.Title == "" {
		return models.NewValidationError("title must not be empty")
	}
	if t.Deadline.IsZero() {
		return models.NewValidationError("deadline is required")
	}
	if t.Value < 0 {
		return models.NewValidationError("value must not be negative")
	}
	if !t.Status.Valid() {
		return models.NewValidationError(fmt.Sprintf("unsupported status: %s", t.Status))
	}
	if t.AIScore != nil && (*t.AIScore < 0 || *t.AIScore > 100) {
		return models.NewValidationError("aiScore must be between 0 and 100")
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// storeError пропускает ошибки домена как есть, таймаут контекста превращает
// в RequestTimeout, остальное - в StoreError с сохранением причины.
func storeError(err error) error {
	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrRequestTimeout, err)
	}
	return fmt.Errorf("%w: %v", models.ErrStore, err)
}
