package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/ledger"
	"github.com/andresuchdata/stockledger/internal/repository"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.LedgerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)
	l := ledger.New(ledger.WithClock(func() time.Time { return now }))
	svc := service.NewLedgerService(l, repository.NewMemoryStore())
	_, err := svc.Bootstrap(context.Background(), true)
	require.NoError(t, err)

	return NewRouter(svc, []string{"http://localhost:5173"}), svc
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	r := NewRouter(nil, nil)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProducts(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/products?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 2)

	w = do(t, r, http.MethodGet, "/api/v1/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	r, svc := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer": "Acme Corp",
		"items":    []map[string]any{{"product_id": "4", "quantity": 5, "price": "10"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Insufficient stock")

	p, err := svc.Ledger().Product("4")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestCreateOrder(t *testing.T) {
	r, svc := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer": "Acme Corp",
		"items":    []map[string]any{{"product_id": "3", "quantity": 10, "price": "25"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	p, err := svc.Ledger().Product("3")
	require.NoError(t, err)
	assert.Equal(t, 110, p.Stock)
}

func TestTransfer(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/stock/transfer", map[string]any{
		"product_id": "3", "from_location_id": "L1", "to_location_id": "L3", "quantity": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully transferred 5 units.", decodeEnvelope(t, w).Message)

	w = do(t, r, http.MethodPost, "/api/v1/stock/transfer", map[string]any{
		"product_id": "3", "from_location_id": "L2", "to_location_id": "L3", "quantity": 50,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/stock/transfer", map[string]any{"product_id": "3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/stock/drift", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestNotifications(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Unread-Count"))

	w = do(t, r, http.MethodPost, "/api/v1/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Unread-Count"))
}

func TestAnalyticsAndReports(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/analytics/dashboard",
		"/api/v1/analytics/aging",
		"/api/v1/analytics/reorder",
		"/api/v1/analytics/suppliers",
		"/api/v1/analytics/po-aging",
		"/api/v1/analytics/status-summary",
		"/api/v1/analytics/financials?months=3",
		"/api/v1/analytics/products/1",
		"/api/v1/insights/quick",
	} {
		w := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := do(t, r, http.MethodPost, "/api/v1/reports", map[string]any{"title": "Weekly"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Weekly", list[0]["title"])

	w = do(t, r, http.MethodGet, "/api/v1/reports/"+list[0]["id"].(string)+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inventory")
}

func TestSnapshotRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/snapshot", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	w = do(t, r, http.MethodPut, "/api/v1/snapshot", map[string]any{"schema": "other/v0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)
	assert.False(t, all)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}

func TestTasks(t *testing.T) {
	r, svc := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/tasks?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review Q3 Inventory", tasks[0].Title)

	w = do(t, r, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Count aisle 4", "assignee": "Sam", "priority": "High"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Task
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
	assert.Equal(t, domain.TaskPending, created.Status)
	assert.Equal(t, "New task assigned: Count aisle 4", svc.Ledger().Activities()[0].Message)

	w = do(t, r, http.MethodPost, "/api/v1/tasks", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{"title": "Count aisle 4", "status": "Completed", "priority": "High"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task updated.", decodeEnvelope(t, w).Message)

	w = do(t, r, http.MethodGet, "/api/v1/tasks?assignee=sam", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskCompleted, tasks[0].Status)

	w = do(t, r, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, svc.Ledger().Tasks(), 3)
}

func TestCopilot(t *testing.T) {
	r, _ := newTestRouter(t)

	list := func() []domain.CopilotInsight {
		w := do(t, r, http.MethodGet, "/api/v1/analytics/copilot", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []domain.CopilotInsight
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	insights := list()
	require.NotEmpty(t, insights)
	first := insights[0]

	w := do(t, r, http.MethodPost, "/api/v1/analytics/copilot/"+first.ID+"/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	after := list()
	assert.Len(t, after, len(insights)-1)
	for _, in := range after {
		assert.NotEqual(t, first.ID, in.ID)
	}
}
