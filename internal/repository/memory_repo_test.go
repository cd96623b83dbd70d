package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, sec, 0, time.UTC)
}

func TestMemoryRemoveDuplicateTenders(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTenderRepository(
		models.Tender{ID: "a2", Title: "A", CreatedAt: at(2), Status: models.ActiveTender},
		models.Tender{ID: "a1", Title: "A", CreatedAt: at(1), Status: models.ActiveTender},
		models.Tender{ID: "b1", Title: "B", CreatedAt: at(1), Status: models.ActiveTender},
	)

	count, err := repo.CountDuplicateTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := repo.RemoveDuplicateTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	tenders, total, err := repo.ListTenders(ctx, models.TenderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, tenders, 2)

	survivor, err := repo.GetTenderByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, at(1), survivor.CreatedAt)

	_, err = repo.GetTenderByID(ctx, "a2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryRemoveDuplicateTendersTieKeepsFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTenderRepository(
		models.Tender{ID: "first", Title: "A", CreatedAt: at(1)},
		models.Tender{ID: "second", Title: "A", CreatedAt: at(1)},
	)

	removed, err := repo.RemoveDuplicateTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.GetTenderByID(ctx, "first")
	assert.NoError(t, err)
}

func TestMemoryListTendersPagination(t *testing.T) {
	ctx := context.Background()
	var seed []models.Tender
	for i := 0; i < 7; i++ {
		seed = append(seed, models.Tender{Title: "T", CreatedAt: at(i), Status: models.ActiveTender})
	}
	repo := NewMemoryTenderRepository(seed...)

	page, total, err := repo.ListTenders(ctx, models.TenderFilter{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, page, 1)
	assert.Equal(t, at(0), page[0].CreatedAt, "newest first, so the oldest is last")

	page, total, err = repo.ListTenders(ctx, models.TenderFilter{Page: 10, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestMemoryTenderNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTenderRepository()

	_, err := repo.UpdateTender(ctx, models.Tender{ID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTender(ctx, "missing"), models.ErrNotFound)
	assert.ErrorIs(t, repo.AssignTender(ctx, "missing", nil), models.ErrNotFound)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTenderRepository()
	created, err := repo.CreateTender(ctx, models.Tender{Title: "T", Requirements: []string{"ISO 9001"}})
	require.NoError(t, err)

	created.Requirements[0] = "changed"
	stored, err := repo.GetTenderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISO 9001"}, stored.Requirements)
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(models.User{Username: "zed"}, models.User{Username: "amy"})

	_, err := repo.CreateUser(ctx, models.User{Username: "amy"})
	assert.ErrorIs(t, err, models.ErrValidation)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
