package models

import (
	"strings"
	"time"
)

// TenderStatus - статус тендера
type TenderStatus string

const (
	ActiveTender            TenderStatus = "active"             // Тендер найден и открыт
	AssignedTender          TenderStatus = "assigned"           // Тендер назначен исполнителю
	InProgressTender        TenderStatus = "in_progress"        // Идёт подготовка заявки
	SubmittedTender         TenderStatus = "submitted"          // Заявка подана
	WonTender               TenderStatus = "won"                // Тендер выигран
	LostTender              TenderStatus = "lost"               // Тендер проигран
	MissedOpportunityTender TenderStatus = "missed_opportunity" // Упущенная возможность, скрыта из списков по умолчанию
)

var tenderStatuses = map[TenderStatus]bool{
	ActiveTender:            true,
	AssignedTender:          true,
	InProgressTender:        true,
	SubmittedTender:         true,
	WonTender:               true,
	LostTender:              true,
	MissedOpportunityTender: true,
}

// Valid проверяет, что статус входит в допустимый набор.
func (s TenderStatus) Valid() bool {
	return tenderStatuses[s]
}

// Tender представляет модель тендера.
type Tender struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Organization string       `json:"organization"`
	Description  string       `json:"description"`
	Value        float64      `json:"value"`
	Deadline     time.Time    `json:"deadline"`
	Status       TenderStatus `json:"status"`
	Source       string       `json:"source"`
	AIScore      *float64     `json:"aiScore"`
	AssignedTo   *string      `json:"assignedTo"`
	Requirements []string     `json:"requirements"`
	Link         string       `json:"link"`
	Version      int32        `json:"version"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Title        string       `json:"title"`
	Organization string       `json:"organization"`
	Description  string       `json:"description"`
	Value        *float64     `json:"value"`
	Deadline     string       `json:"deadline"`
	Status       TenderStatus `json:"status"`
	Source       string       `json:"source"`
	AIScore      *float64     `json:"aiScore"`
	Requirements []string     `json:"requirements"`
	Link         string       `json:"link"`
}

// TenderPatch представляет частичное обновление тендера: nil означает "не менять".
type TenderPatch struct {
	Title        *string       `json:"title"`
	Organization *string       `json:"organization"`
	Description  *string       `json:"description"`
	Value        *float64      `json:"value"`
	Deadline     *string       `json:"deadline"`
	Status       *TenderStatus `json:"status"`
	Source       *string       `json:"source"`
	AIScore      *float64      `json:"aiScore"`
	Requirements []string      `json:"requirements"`
	Link         *string       `json:"link"`
}

// Empty сообщает, что в патче нет ни одного поля.
func (p TenderPatch) Empty() bool {
	return p.Title == nil && p.Organization == nil && p.Description == nil &&
		p.Value == nil && p.Deadline == nil && p.Status == nil && p.Source == nil &&
		p.AIScore == nil && p.Requirements == nil && p.Link == nil
}

// AssignRequest - тело запроса на назначение тендера.
type AssignRequest struct {
	UserID *string `json:"userId"`
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDeadline разбирает дату дедлайна в формате RFC3339 или YYYY-MM-DD.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range deadlineLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
