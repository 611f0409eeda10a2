package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanssonfredrik/customers/config"
	"github.com/hanssonfredrik/customers/internal/api/rest/middleware"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/metrics"
	"github.com/hanssonfredrik/customers/internal/repository"
	"github.com/hanssonfredrik/customers/internal/service"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, mutate func(cfg *config.Config)) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	log := logger.Discard()
	reg := prometheus.NewRegistry()
	repo := repository.NewInMemoryCustomerRepository(log)
	svc := service.NewCustomerService(repo, nil, metrics.NewCustomerMetrics(reg, log), log)

	return SetupRouter(RouterDeps{
		Config:    cfg,
		Log:       log,
		Registry:  reg,
		Customers: svc,
		Store:     repo,
	})
}

func serve(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	var req *http.Request
	if rd != nil {
		req = httptest.NewRequest(method, target, rd)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_CustomerLifecycle(t *testing.T) {
	r := newTestEngine(t, nil)
	body := `{"name":"A","email":"a@x.com","phone":"1234567890"}`

	w := serve(r, http.MethodPost, "/customers", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/customers/1", w.Header().Get("Location"))

	var created domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Nil(t, created.City)

	w = serve(r, http.MethodPost, "/customers", body)
	require.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodGet, "/customers/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.Email, got.Email)
	assert.True(t, created.SignupDate.Equal(got.SignupDate))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, field := range []string{"street", "city", "state", "postalCode", "country"} {
		value, present := raw[field]
		assert.True(t, present, "%s is missing", field)
		assert.Nil(t, value, "%s should be null", field)
	}

	w = serve(r, http.MethodPut, "/customers/1", `{"name":"A2","email":"a@x.com","phone":"1234567890","city":"Stockholm"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodGet, "/customers?city=Stockholm", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page domain.CustomerPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A2", page.Items[0].Name)
	assert.True(t, created.SignupDate.Equal(page.Items[0].SignupDate))

	w = serve(r, http.MethodDelete, "/customers/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodGet, "/customers/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PageBeyondIntRangeIsRejected(t *testing.T) {
	r := newTestEngine(t, nil)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		w := serve(r, http.MethodPost, "/customers", `{"name":"A","email":"`+email+`","phone":"1234567890"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := serve(r, http.MethodGet, "/customers?page=9223372036854775807&pageSize=2", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"page":[`)

	w = serve(r, http.MethodGet, "/customers?page=3&pageSize=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page domain.CustomerPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Items)
}

func TestRouter_RequestIDAndCORS(t *testing.T) {
	r := newTestEngine(t, nil)

	t.Run("request id is generated", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/customers", "")
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("request id is propagated into problems", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/customers/77", "", middleware.RequestIDHeader, "abc-123")
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
		assert.Contains(t, w.Body.String(), `"traceId":"abc-123"`)
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/customers", "", "Origin", "http://localhost:5173")
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/customers", "", "Origin", "http://evil.example")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "/customers/1", "",
			"Origin", "http://localhost:5173",
			"Access-Control-Request-Method", "PUT")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestEngine(t, nil)

	w := serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	serve(r, http.MethodGet, "/customers/1", "")

	w = serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/customers/:id",status="404"} 1`)
	assert.Contains(t, w.Body.String(), `customers_operations_total{operation="get",result="not_found"} 1`)
}

func TestRouter_AdminBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>admin</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	r := newTestEngine(t, func(cfg *config.Config) { cfg.Admin.Dir = dir })

	w := serve(r, http.MethodGet, "/admin/assets/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = serve(r, http.MethodGet, "/admin/customers/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")

	w = serve(r, http.MethodGet, "/admin/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestRouter_NoAdminByDefault(t *testing.T) {
	r := newTestEngine(t, nil)
	w := serve(r, http.MethodGet, "/admin/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
