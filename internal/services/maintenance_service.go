package services

import (
	"context"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"
)

// MaintenanceService выполняет административные пакетные операции.
type MaintenanceService struct {
	Repo repository.TenderRepository
}

// NewMaintenanceService создаёт новый экземпляр MaintenanceService.
func NewMaintenanceService(repo repository.TenderRepository) *MaintenanceService {
	return &MaintenanceService{Repo: repo}
}

// CountDuplicates возвращает число тендеров-дубликатов без удаления.
func (s *MaintenanceService) CountDuplicates(ctx context.Context) (int64, error) {
	count, err := s.Repo.CountDuplicateTenders(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return count, nil
}

// RemoveDuplicates удаляет тендеры с повторяющимся заголовком, оставляя
// самый ранний, и возвращает число удалённых записей.
func (s *MaintenanceService) RemoveDuplicates(ctx context.Context) (int64, error) {
	removed, err := s.Repo.RemoveDuplicateTenders(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return removed, nil
}
