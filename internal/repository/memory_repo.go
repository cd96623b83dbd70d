package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/google/uuid"
)

// MemoryTenderRepository хранит тендеры в памяти процесса. Используется в
// режиме разработки без базы данных и в тестах.
type MemoryTenderRepository struct {
	mu      sync.RWMutex
	tenders []models.Tender
	now     func() time.Time
}

// NewMemoryTenderRepository создаёт хранилище с начальными записями; ID и
// время создания начальных записей сохраняются как есть.
func NewMemoryTenderRepository(seed ...models.Tender) *MemoryTenderRepository {
	r := &MemoryTenderRepository{now: func() time.Time { return time.Now().UTC() }}
	for _, t := range seed {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		r.tenders = append(r.tenders, cloneTender(t))
	}
	return r
}

func cloneTender(t models.Tender) models.Tender {
	if t.Requirements != nil {
		t.Requirements = append([]string{}, t.Requirements...)
	} else {
		t.Requirements = []string{}
	}
	if t.AIScore != nil {
		score := *t.AIScore
		t.AIScore = &score
	}
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		t.AssignedTo = &assignee
	}
	return t
}

func (r *MemoryTenderRepository) indexOf(tenderID string) int {
	for i := range r.tenders {
		if r.tenders[i].ID == tenderID {
			return i
		}
	}
	return -1
}

// ListTenders возвращает страницу тендеров и общее число подходящих записей.
func (r *MemoryTenderRepository) ListTenders(_ context.Context, filter models.TenderFilter) ([]models.Tender, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Tender{}
	for _, t := range r.tenders {
		if filter.Matches(t) {
			matched = append(matched, cloneTender(t))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := filter.Offset()
	if offset < 0 || offset >= total {
		return []models.Tender{}, total, nil
	}
	end := total
	if filter.Limit < total-offset {
		end = offset + filter.Limit
	}
	return matched[offset:end], total, nil
}

// GetTenderByID возвращает тендер по ID.
func (r *MemoryTenderRepository) GetTenderByID(_ context.Context, tenderID string) (*models.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(tenderID)
	if i < 0 {
		return nil, models.NewNotFoundError("tender not found")
	}
	t := cloneTender(r.tenders[i])
	return &t, nil
}

// CreateTender создает новый тендер.
func (r *MemoryTenderRepository) CreateTender(_ context.Context, tender models.Tender) (*models.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	tender.ID = uuid.New().String()
	tender.Version = 1
	tender.CreatedAt = now
	tender.UpdatedAt = now
	tender = cloneTender(tender)
	r.tenders = append(r.tenders, tender)

	created := cloneTender(tender)
	return &created, nil
}

// UpdateTender перезаписывает изменяемые поля тендера.
func (r *MemoryTenderRepository) UpdateTender(_ context.Context, tender models.Tender) (*models.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(tender.ID)
	if i < 0 {
		return nil, models.NewNotFoundError("tender not found")
	}
	current := r.tenders[i]
	tender.AssignedTo = current.AssignedTo
	tender.CreatedAt = current.CreatedAt
	tender.Version = current.Version + 1
	tender.UpdatedAt = r.now()
	r.tenders[i] = cloneTender(tender)

	updated := cloneTender(tender)
	return &updated, nil
}

// DeleteTender удаляет тендер.
func (r *MemoryTenderRepository) DeleteTender(_ context.Context, tenderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(tenderID)
	if i < 0 {
		return models.NewNotFoundError("tender not found")
	}
	r.tenders = append(r.tenders[:i], r.tenders[i+1:]...)
	return nil
}

// AssignTender назначает тендер пользователю; nil снимает назначение.
func (r *MemoryTenderRepository) AssignTender(_ context.Context, tenderID string, userID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(tenderID)
	if i < 0 {
		return models.NewNotFoundError("tender not found")
	}
	if userID != nil {
		assignee := *userID
		userID = &assignee
	}
	r.tenders[i].AssignedTo = userID
	r.tenders[i].Version++
	r.tenders[i].UpdatedAt = r.now()
	return nil
}

// survivors возвращает индексы записей, которые остаются после удаления дубликатов.
func (r *MemoryTenderRepository) survivors() map[int]bool {
	keep := map[string]int{}
	for i, t := range r.tenders {
		j, seen := keep[t.Title]
		if !seen || t.CreatedAt.Before(r.tenders[j].CreatedAt) {
			keep[t.Title] = i
		}
	}
	result := make(map[int]bool, len(keep))
	for _, i := range keep {
		result[i] = true
	}
	return result
}

// CountDuplicateTenders возвращает число тендеров, которые будут удалены как дубликаты.
func (r *MemoryTenderRepository) CountDuplicateTenders(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.tenders) - len(r.survivors())), nil
}

// RemoveDuplicateTenders оставляет по одному тендеру на заголовок, самый ранний по created_at.
func (r *MemoryTenderRepository) RemoveDuplicateTenders(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := r.survivors()
	remaining := make([]models.Tender, 0, len(keep))
	for i, t := range r.tenders {
		if keep[i] {
			remaining = append(remaining, t)
		}
	}
	removed := int64(len(r.tenders) - len(remaining))
	r.tenders = remaining
	return removed, nil
}

// MemoryUserRepository хранит пользователей в памяти процесса.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

// NewMemoryUserRepository создаёт хранилище с начальными пользователями.
func NewMemoryUserRepository(seed ...models.User) *MemoryUserRepository {
	r := &MemoryUserRepository{}
	for _, u := range seed {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		r.users = append(r.users, u)
	}
	return r
}

// GetUserByUsername ищет пользователя по точному совпадению логина.
func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, models.NewNotFoundError("user not found")
}

// GetUserByID ищет пользователя по ID.
func (r *MemoryUserRepository) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == userID {
			user := u
			return &user, nil
		}
	}
	return nil, models.NewNotFoundError("user not found")
}

// ListUsers возвращает всех пользователей, отсортированных по логину.
func (r *MemoryUserRepository) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := append([]models.User{}, r.users...)
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// CreateUser добавляет пользователя. Хэш пароля должен быть уже посчитан.
func (r *MemoryUserRepository) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, models.NewValidationError("username already exists")
		}
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()
	r.users = append(r.users, user)

	created := user
	return &created, nil
}
