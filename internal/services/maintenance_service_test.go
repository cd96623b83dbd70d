package services

import (
	"context"
	"testing"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDuplicates(t *testing.T) {
	ctx := context.Background()
	t1 := time.Unix(1, 0).UTC()
	t2 := time.Unix(2, 0).UTC()
	repo := repository.NewMemoryTenderRepository(
		models.Tender{Title: "A", CreatedAt: t1, Status: models.ActiveTender},
		models.Tender{Title: "A", CreatedAt: t2, Status: models.ActiveTender},
		models.Tender{Title: "B", CreatedAt: t1, Status: models.ActiveTender},
	)
	svc := NewMaintenanceService(repo)

	count, err := svc.CountDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := svc.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, total, err := repo.ListTenders(ctx, models.TenderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, tender := range remaining {
		if tender.Title == "A" {
			assert.Equal(t, t1, tender.CreatedAt)
		}
	}

	removed, err = svc.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "second run is a no-op")
}
