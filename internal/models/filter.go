package models

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage держит (page-1)*limit в пределах int.
	MaxPage = math.MaxInt / MaxLimit
)

// TenderFilter - параметры фильтрации и пагинации списка тендеров.
type TenderFilter struct {
	Search string
	Source string
	Status TenderStatus
	Page   int
	Limit  int
}

// Normalize приводит page и limit к допустимым границам.
func (f TenderFilter) Normalize() TenderFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Source = strings.TrimSpace(f.Source)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset возвращает смещение для текущей страницы. При переполнении
// возвращается math.MaxInt, то есть заведомо за концом выборки.
func (f TenderFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// Matches проверяет тендер на соответствие фильтру. Без явного статуса
// упущенные возможности не попадают в выборку.
func (f TenderFilter) Matches(t Tender) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Organization), needle) {
			return false
		}
	}
	if f.Source != "" && t.Source != f.Source {
		return false
	}
	if f.Status != "" {
		return t.Status == f.Status
	}
	return t.Status != MissedOpportunityTender
}

// Pagination описывает страницу результата.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination считает число страниц; limit должен быть уже нормализован.
func NewPagination(f TenderFilter, total int) Pagination {
	return Pagination{
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: (total + f.Limit - 1) / f.Limit,
	}
}

// TenderPage - ответ на запрос списка тендеров.
type TenderPage struct {
	Tenders    []Tender   `json:"tenders"`
	Pagination Pagination `json:"pagination"`
}
