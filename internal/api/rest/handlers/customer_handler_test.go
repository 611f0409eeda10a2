package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/mocks"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/hanssonfredrik/customers/pkg/res"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *mocks.CustomerService) *gin.Engine {
	h := NewCustomerHandler(svc, logger.Discard())
	r := gin.New()
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/:id", h.GetCustomer)
	r.POST("/customers", h.CreateCustomer)
	r.PUT("/customers/:id", h.UpdateCustomer)
	r.DELETE("/customers/:id", h.DeleteCustomer)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) res.ProblemDetails {
	t.Helper()
	assert.Equal(t, res.ProblemContentType, w.Header().Get("Content-Type"))
	var p res.ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestCustomerHandler_ListCustomers(t *testing.T) {
	t.Run("defaults and filters", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Microsecond)

		svc.On("List", mock.Anything, domain.ListParams{
			Page:     1,
			PageSize: domain.DefaultPageSize,
			Filter: domain.CustomerFilter{
				Name:   "ali",
				Search: "46",
				City:   "Malmö",
				From:   &from,
				To:     &to,
			},
		}).Return(domain.CustomerPage{Total: 0, Page: 1, PageSize: 50, Items: []domain.Customer{}}, nil).Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers?name=ali&search=46&city=Malm%C3%B6&from=2024-01-01&to=2024-01-31", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total":0,"page":1,"pageSize":50,"items":[]}`, w.Body.String())
	})

	t.Run("rfc3339 bounds are kept exact", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		to := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
		svc.On("List", mock.Anything, mock.MatchedBy(func(p domain.ListParams) bool {
			return p.Page == 2 && p.PageSize == 10 && p.Filter.To != nil && p.Filter.To.Equal(to) && p.Filter.From == nil
		})).Return(domain.CustomerPage{Items: []domain.Customer{}}, nil).Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers?page=2&pageSize=10&to=2024-02-01T13:00:00%2B01:00", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed query values", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)

		w := do(newTestRouter(svc), http.MethodGet, "/customers?page=abc&pageSize=x&from=yesterday", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		p := decodeProblem(t, w)
		assert.Contains(t, p.Errors, "page")
		assert.Contains(t, p.Errors, "pageSize")
		assert.Contains(t, p.Errors, "from")
	})

	t.Run("service validation error", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("List", mock.Anything, mock.Anything).
			Return(domain.CustomerPage{}, domain.ValidationErrors{{Field: "pageSize", Message: "Page size must be between 1 and 200"}}).
			Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers?pageSize=500", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, []string{"Page size must be between 1 and 200"}, p.Errors["pageSize"])
	})
}

func TestCustomerHandler_GetCustomer(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Get", mock.Anything, int64(12)).
			Return(domain.Customer{ID: 12, Name: "Alice", Email: "a@x.com", Phone: "1234567890"}, nil).
			Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers/12", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(12), body["id"])
		assert.Contains(t, body, "street")
		assert.Nil(t, body["street"])
	})

	for _, id := range []string{"abc", "0", "-3", "99999999999999999999"} {
		t.Run("impossible id "+id, func(t *testing.T) {
			svc := mocks.NewCustomerService(t)
			w := do(newTestRouter(svc), http.MethodGet, "/customers/"+id, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}

	t.Run("not found", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Get", mock.Anything, int64(5)).Return(domain.Customer{}, domain.NewNotFoundError("customer", 5)).Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers/5", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, http.StatusNotFound, p.Status)
		assert.Equal(t, "/customers/5", p.Instance)
	})

	t.Run("transient", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Get", mock.Anything, int64(5)).Return(domain.Customer{}, domain.ErrTransient).Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers/5", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unexpected error hides internals", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Get", mock.Anything, int64(5)).Return(domain.Customer{}, errors.New("pq: secret detail")).Once()

		w := do(newTestRouter(svc), http.MethodGet, "/customers/5", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CustomerInput) bool {
			return in.Name == "A" && in.Email == "a@x.com" && in.Street != nil && *in.Street == ""
		})).Return(domain.Customer{ID: 1, Name: "A", Email: "a@x.com", Phone: "1234567890"}, nil).Once()

		w := do(newTestRouter(svc), http.MethodPost, "/customers",
			`{"name":"A","email":"a@x.com","phone":"1234567890","street":""}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/customers/1", w.Header().Get("Location"))
	})

	t.Run("conflict", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(domain.Customer{}, domain.NewDuplicateError("customer", "email", "a@x.com")).
			Once()

		w := do(newTestRouter(svc), http.MethodPost, "/customers", `{"name":"A","email":"a@x.com","phone":"1234567890"}`)
		require.Equal(t, http.StatusConflict, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, "Email address already exists.", p.Title)
		assert.Equal(t, "A customer with email 'a@x.com' already exists in the system.", p.Detail)
		assert.Equal(t, res.ProblemTypeDefault, p.Type)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)

		for _, body := range []string{`{"name":`, `[]`, `{"name":"A"} {"name":"B"}`, `{"signupDate":"yesterday"}`} {
			w := do(newTestRouter(svc), http.MethodPost, "/customers", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}

		w := do(newTestRouter(svc), http.MethodPost, "/customers", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation errors are grouped by field", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		verrs := domain.ValidationErrors{
			{Field: "name", Message: "Name is required"},
			{Field: "email", Message: "Invalid email address"},
		}
		svc.On("Create", mock.Anything, mock.Anything).Return(domain.Customer{}, verrs).Once()

		w := do(newTestRouter(svc), http.MethodPost, "/customers", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		p := decodeProblem(t, w)
		assert.Equal(t, map[string][]string{
			"name":  {"Name is required"},
			"email": {"Invalid email address"},
		}, p.Errors)
	})
}

func TestCustomerHandler_UpdateAndDelete(t *testing.T) {
	t.Run("update no content", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Update", mock.Anything, int64(3), mock.Anything).Return(nil).Once()

		w := do(newTestRouter(svc), http.MethodPut, "/customers/3", `{"id":3,"name":"A","email":"a@x.com","phone":"1234567890"}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("update conflict", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Update", mock.Anything, int64(3), mock.Anything).
			Return(domain.NewDuplicateError("customer", "email", "b@x.com")).
			Once()

		w := do(newTestRouter(svc), http.MethodPut, "/customers/3", `{"name":"A","email":"b@x.com","phone":"1234567890"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update impossible id skips body", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		w := do(newTestRouter(svc), http.MethodPut, "/customers/x", `{`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		svc := mocks.NewCustomerService(t)
		svc.On("Delete", mock.Anything, int64(3)).Return(nil).Once()
		svc.On("Delete", mock.Anything, int64(4)).Return(domain.NewNotFoundError("customer", 4)).Once()

		r := newTestRouter(svc)
		assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/customers/3", "").Code)
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/customers/4", "").Code)
	})
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{name: "healthy", status: http.StatusOK, want: "OK"},
		{name: "store down", err: domain.ErrTransient, status: http.StatusServiceUnavailable, want: "UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(context.Context) error { return tt.err }), logger.Discard())
			r := gin.New()
			r.GET("/health", h.HealthCheck)

			w := do(r, http.MethodGet, "/health", "")
			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["status"])
			assert.NotEmpty(t, body["time"])
		})
	}
}
