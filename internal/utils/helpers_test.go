package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseTenderFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    models.TenderFilter
		wantErr bool
	}{
		{"defaults", "", models.TenderFilter{Page: 1, Limit: 20}, false},
		{"all params", "search=road&source=gem&status=won&page=3&limit=5",
			models.TenderFilter{Search: "road", Source: "gem", Status: models.WonTender, Page: 3, Limit: 5}, false},
		{"clamped", "page=0&limit=1000", models.TenderFilter{Page: 1, Limit: 100}, false},
		{"negative limit", "limit=-4", models.TenderFilter{Page: 1, Limit: 1}, false},
		{"non numeric page", "page=abc", models.TenderFilter{}, true},
		{"non numeric limit", "limit=ten", models.TenderFilter{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseTenderFilter(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", models.NewValidationError("title must not be empty"), http.StatusBadRequest, "title must not be empty"},
		{"not found", models.NewNotFoundError("tender not found"), http.StatusNotFound, "tender not found"},
		{"store error hides cause", fmt.Errorf("%w: password authentication failed", models.ErrStore), http.StatusInternalServerError, "internal server error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "failed to do it"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, logger, tt.err, "failed to do it")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeError(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
