package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type fakeSyncService struct {
	status     *model.SyncStatusSummary
	page       *model.SyncEventPage
	lastParams model.SyncEventQueryParams
	retry      *model.RetryFailedResult
	full       *model.FullSyncResult
	err        error
}

func (f *fakeSyncService) Status(context.Context) (*model.SyncStatusSummary, error) {
	return f.status, f.err
}

func (f *fakeSyncService) ListEvents(_ context.Context, params model.SyncEventQueryParams) (*model.SyncEventPage, error) {
	f.lastParams = params

	return f.page, f.err
}

func (f *fakeSyncService) RetryFailed(context.Context) (*model.RetryFailedResult, error) {
	return f.retry, f.err
}

func (f *fakeSyncService) FullSync(context.Context) (*model.FullSyncResult, error) {
	return f.full, f.err
}

func newSyncRouter(svc SyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewSyncHandler(zap.NewNop(), svc)

	r := gin.New()
	r.GET("/sync/status", h.Status)
	r.GET("/sync/events", h.Events)
	r.POST("/sync/retry-failed", h.RetryFailed)
	r.POST("/sync/full-sync", h.FullSync)

	return r
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	return w
}

func TestSyncStatusResponse(t *testing.T) {
	svc := &fakeSyncService{status: &model.SyncStatusSummary{
		Enabled:     true,
		TargetURL:   "http://downstream:8000",
		TotalEvents: 3,
		Failed:      1,
		Success:     2,
	}}

	w := serve(newSyncRouter(svc), http.MethodGet, "/sync/status")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"status": "ok",
		"enabled": true,
		"target_url": "http://downstream:8000",
		"total_events": 3,
		"pending": 0,
		"failed": 1,
		"success": 2
	}`, w.Body.String())
}

func TestSyncEventsBindsQuery(t *testing.T) {
	svc := &fakeSyncService{page: &model.SyncEventPage{Events: []model.SyncEventSummary{}, Limit: 10}}

	w := serve(newSyncRouter(svc), http.MethodGet, "/sync/events?status_filter=failed&entity_type=user&skip=5&limit=10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", svc.lastParams.StatusFilter)
	assert.Equal(t, "user", svc.lastParams.EntityType)
	assert.Equal(t, 5, svc.lastParams.Skip)
	require.NotNil(t, svc.lastParams.Limit)
	assert.Equal(t, 10, *svc.lastParams.Limit)
}

func TestSyncEventsOmitPayloads(t *testing.T) {
	const hash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	code := http.StatusCreated
	echo := `{"echo":"` + hash + `"}`
	event := model.SyncEvent{
		ID:                 uuid.New(),
		EntityType:         model.EntityUser,
		EntityID:           "u-1",
		Action:             model.ActionCreate,
		Status:             model.SyncStatusSuccess,
		MaxRetries:         3,
		Payload:            json.RawMessage(`{"action":"create","data":{"id":"u-1","encrypted_password":"` + hash + `"}}`),
		ResponseStatusCode: &code,
		ResponseBody:       &echo,
		CreatedAt:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	svc := &fakeSyncService{page: &model.SyncEventPage{
		Events: []model.SyncEventSummary{event.Summary()},
		Total:  1,
		Limit:  50,
	}}

	w := serve(newSyncRouter(svc), http.MethodGet, "/sync/events")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), hash)

	var body struct {
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)

	assert.NotContains(t, body.Events[0], "payload")
	assert.NotContains(t, body.Events[0], "response_body")
	assert.Equal(t, "u-1", body.Events[0]["entity_id"])
	assert.EqualValues(t, http.StatusCreated, body.Events[0]["response_status_code"])
}

func TestSyncEventsRejectsNegativeSkip(t *testing.T) {
	w := serve(newSyncRouter(&fakeSyncService{}), http.MethodGet, "/sync/events?skip=-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullSyncResponse(t *testing.T) {
	svc := &fakeSyncService{full: &model.FullSyncResult{
		Organizations: 1,
		Errors:        []string{"org:abc"},
	}}

	w := serve(newSyncRouter(svc), http.MethodPost, "/sync/full-sync")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"synced": {"organizations": 1, "users": 0, "user_organizations": 0, "errors": ["org:abc"]}
	}`, w.Body.String())
}

func TestBulkSyncErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "lock held",
			err:      apperrors.ErrSyncOperationInProgress,
			wantCode: http.StatusConflict,
			wantMsg:  apperrors.ErrSyncOperationInProgress.Error(),
		},
		{
			name:     "store failure is not leaked",
			err:      errors.New("failed to select failed sync events: connection reset"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newSyncRouter(&fakeSyncService{err: tt.err})

			for _, target := range []string{"/sync/retry-failed", "/sync/full-sync"} {
				w := serve(r, http.MethodPost, target)

				require.Equal(t, tt.wantCode, w.Code, target)

				var body ResponseWithMessage
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}
