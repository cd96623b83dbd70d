package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }
func str(v string) *string     { return &v }

func seededTenders() []models.Tender {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sources := []string{"gem", "cppp", "email"}
	statuses := []models.TenderStatus{models.ActiveTender, models.SubmittedTender, models.MissedOpportunityTender}
	var tenders []models.Tender
	for i := 0; i < 45; i++ {
		tenders = append(tenders, models.Tender{
			Title:        fmt.Sprintf("Tender %02d road works", i),
			Organization: fmt.Sprintf("Org %d", i%4),
			Value:        float64(i) * 1000,
			Deadline:     base.AddDate(0, 1, 0),
			Status:       statuses[i%3],
			Source:       sources[i%3],
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}
	return tenders
}

func newTenderService(seed ...models.Tender) *TenderService {
	return NewTenderService(repository.NewMemoryTenderRepository(seed...), repository.NewMemoryUserRepository())
}

func countMatching(tenders []models.Tender, f models.TenderFilter) int {
	n := 0
	for _, t := range tenders {
		if f.Normalize().Matches(t) {
			n++
		}
	}
	return n
}

func TestListTendersBoundsAndTotal(t *testing.T) {
	ctx := context.Background()
	seed := seededTenders()
	svc := newTenderService(seed...)

	filters := []models.TenderFilter{
		{},
		{Search: "ROAD"},
		{Search: "org 1"},
		{Source: "cppp"},
		{Status: models.MissedOpportunityTender},
		{Search: "tender 1", Source: "gem"},
		{Search: "nothing matches"},
	}
	for _, f := range filters {
		for _, limit := range []int{1, 3, 7, 20, 100} {
			for page := 1; page <= 5; page++ {
				f.Page, f.Limit = page, limit
				result, err := svc.ListTenders(ctx, f)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(result.Tenders), limit)
				assert.Equal(t, countMatching(seed, f), result.Pagination.Total, "filter %+v", f)
				assert.Equal(t, (result.Pagination.Total+limit-1)/limit, result.Pagination.TotalPages)
			}
		}
	}
}

func TestListTendersIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService(seededTenders()...)
	f := models.TenderFilter{Search: "road", Page: 2, Limit: 5}

	first, err := svc.ListTenders(ctx, f)
	require.NoError(t, err)
	second, err := svc.ListTenders(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListTendersClamping(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService(append(seededTenders(), seededTenders()...)...)

	clamped, err := svc.ListTenders(ctx, models.TenderFilter{Page: 0, Limit: 1000})
	require.NoError(t, err)
	explicit, err := svc.ListTenders(ctx, models.TenderFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, explicit, clamped)

	zero, err := svc.ListTenders(ctx, models.TenderFilter{Page: 1, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, zero.Pagination.Limit)
	assert.Len(t, zero.Tenders, 1)
}

func TestListTendersPageBeyondEnd(t *testing.T) {
	svc := newTenderService(seededTenders()...)
	result, err := svc.ListTenders(context.Background(), models.TenderFilter{Page: 99, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, result.Tenders)
	assert.Empty(t, result.Tenders)
	assert.Equal(t, 30, result.Pagination.Total)
}

func TestListTendersHugePage(t *testing.T) {
	svc := newTenderService(seededTenders()...)
	for _, f := range []models.TenderFilter{
		{Page: (1 << 62) + 1, Limit: 2},
		{Page: math.MaxInt, Limit: 1000},
		{Page: math.MaxInt / 2, Limit: 3},
	} {
		result, err := svc.ListTenders(context.Background(), f)
		require.NoError(t, err, "filter %+v", f)
		assert.NotNil(t, result.Tenders)
		assert.Empty(t, result.Tenders)
		assert.Equal(t, 30, result.Pagination.Total)
		assert.LessOrEqual(t, result.Pagination.Page, models.MaxPage)
	}
}

func TestListTendersRejectsUnknownStatus(t *testing.T) {
	svc := newTenderService()
	_, err := svc.ListTenders(context.Background(), models.TenderFilter{Status: "archived"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService()

	req := models.TenderRequest{
		Title:        "Supply of laptops",
		Organization: "Ministry of Education",
		Description:  "500 units",
		Value:        float(125000.50),
		Deadline:     "2031-06-30",
		Source:       "gem",
		AIScore:      float(87.5),
		Requirements: []string{"EMD", "ISO 9001"},
		Link:         "https://example.org/t/1",
	}
	created, err := svc.CreateTender(ctx, req)
	require.NoError(t, err)

	got, err := svc.GetTender(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Title, got.Title)
	assert.Equal(t, req.Organization, got.Organization)
	assert.Equal(t, req.Description, got.Description)
	assert.Equal(t, *req.Value, got.Value)
	assert.Equal(t, time.Date(2031, 6, 30, 0, 0, 0, 0, time.UTC), got.Deadline)
	assert.Equal(t, models.ActiveTender, got.Status)
	assert.Equal(t, req.Source, got.Source)
	assert.Equal(t, *req.AIScore, *got.AIScore)
	assert.Equal(t, req.Requirements, got.Requirements)
	assert.Equal(t, req.Link, got.Link)
	assert.Equal(t, int32(1), got.Version)
}

func TestCreateTenderValidation(t *testing.T) {
	svc := newTenderService()
	valid := models.TenderRequest{Title: "T", Deadline: "2031-01-01", Value: float(1)}

	tests := []struct {
		name   string
		mutate func(r *models.TenderRequest)
	}{
		{"missing title", func(r *models.TenderRequest) { r.Title = "  " }},
		{"missing deadline", func(r *models.TenderRequest) { r.Deadline = "" }},
		{"missing value", func(r *models.TenderRequest) { r.Value = nil }},
		{"negative value", func(r *models.TenderRequest) { r.Value = float(-1) }},
		{"bad deadline", func(r *models.TenderRequest) { r.Deadline = "soon" }},
		{"unknown status", func(r *models.TenderRequest) { r.Status = "archived" }},
		{"ai score out of range", func(r *models.TenderRequest) { r.AIScore = float(101) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.CreateTender(context.Background(), req)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	_, err := svc.CreateTender(context.Background(), valid)
	assert.NoError(t, err)
}

func TestUpdateTenderMerges(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService()
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC) }

	created, err := svc.CreateTender(ctx, models.TenderRequest{
		Title: "Original", Organization: "Org", Deadline: "2030-02-01", Value: float(10),
	})
	require.NoError(t, err)

	status := models.SubmittedTender
	updated, err := svc.UpdateTender(ctx, created.ID, models.TenderPatch{Title: str("Renamed"), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Org", updated.Organization)
	assert.Equal(t, models.SubmittedTender, updated.Status)
	assert.Equal(t, float64(10), updated.Value)
	assert.Equal(t, int32(2), updated.Version)

	_, err = svc.UpdateTender(ctx, created.ID, models.TenderPatch{Deadline: str("2029-12-31")})
	assert.ErrorIs(t, err, models.ErrValidation, "deadline in the past")

	_, err = svc.UpdateTender(ctx, created.ID, models.TenderPatch{Deadline: str("2030-01-01")})
	assert.NoError(t, err, "today is still allowed")

	_, err = svc.UpdateTender(ctx, created.ID, models.TenderPatch{Title: str("")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateTender(ctx, created.ID, models.TenderPatch{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTenderNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService()
	missing := "6f1c2b1e-8a55-4c3e-9b0a-2d8f1f6f0c11"

	_, err := svc.GetTender(ctx, missing)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.GetTender(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.UpdateTender(ctx, missing, models.TenderPatch{Title: str("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTender(ctx, missing), models.ErrNotFound)
}

func TestDeleteTender(t *testing.T) {
	ctx := context.Background()
	svc := newTenderService()
	created, err := svc.CreateTender(ctx, models.TenderRequest{Title: "T", Deadline: "2031-01-01", Value: float(1)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTender(ctx, created.ID))
	_, err = svc.GetTender(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignTender(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository(models.User{ID: "0b7f6a3c-1d2e-4f50-8a9b-1c2d3e4f5a6b", Username: "bidder", Role: models.BidderRole})
	svc := NewTenderService(repository.NewMemoryTenderRepository(), users)

	created, err := svc.CreateTender(ctx, models.TenderRequest{Title: "T", Deadline: "2031-01-01", Value: float(1)})
	require.NoError(t, err)

	userID := "0b7f6a3c-1d2e-4f50-8a9b-1c2d3e4f5a6b"
	require.NoError(t, svc.AssignTender(ctx, created.ID, &userID))
	got, err := svc.GetTender(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, userID, *got.AssignedTo)

	unknown := "11111111-2222-3333-4444-555555555555"
	assert.ErrorIs(t, svc.AssignTender(ctx, created.ID, &unknown), models.ErrValidation)

	require.NoError(t, svc.AssignTender(ctx, created.ID, nil))
	got, err = svc.GetTender(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
}

type failingTenderRepo struct {
	repository.TenderRepository
	err error
}

func (r failingTenderRepo) ListTenders(context.Context, models.TenderFilter) ([]models.Tender, int, error) {
	return nil, 0, r.err
}

func TestListTendersStoreErrors(t *testing.T) {
	svc := NewTenderService(failingTenderRepo{err: fmt.Errorf("query: %w", context.DeadlineExceeded)}, nil)
	_, err := svc.ListTenders(context.Background(), models.TenderFilter{})
	assert.ErrorIs(t, err, models.ErrRequestTimeout)

	svc = NewTenderService(failingTenderRepo{err: fmt.Errorf("connection refused")}, nil)
	_, err = svc.ListTenders(context.Background(), models.TenderFilter{})
	assert.ErrorIs(t, err, models.ErrStore)
	assert.Contains(t, err.Error(), "connection refused")
}
