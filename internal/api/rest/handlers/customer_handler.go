package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/internal/api/rest/middleware"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/service"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/hanssonfredrik/customers/pkg/req"
	"github.com/hanssonfredrik/customers/pkg/res"
)

const dateLayout = "2006-01-02"

// CustomerHandler serves the /customers resource.
type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler creates a customer handler over svc.
func NewCustomerHandler(svc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		log:     log,
	}
}

// ListCustomers returns one filtered page of customers.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params, verrs := parseListParams(c)
	if verrs.HasErrors() {
		h.writeError(c, verrs)
		return
	}

	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetCustomer returns a single customer.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	customer, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer and points Location at it.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	in, ok := h.decodeInput(c)
	if !ok {
		return
	}

	customer, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Location", "/customers/"+strconv.FormatInt(customer.ID, 10))
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer replaces a customer's fields.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	in, ok := h.decodeInput(c)
	if !ok {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, in); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteCustomer removes a customer.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pathID parses the :id parameter. Ids that cannot exist are answered with
// 404.
func (h *CustomerHandler) pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.problem(c, res.Problem(http.StatusNotFound, "Not Found",
			fmt.Sprintf("Customer with id '%s' was not found.", raw)))
		return 0, false
	}
	return id, true
}

func (h *CustomerHandler) decodeInput(c *gin.Context) (domain.CustomerInput, bool) {
	in, err := req.DecodeRequest[domain.CustomerInput](c.Writer, c.Request)
	if err != nil {
		h.log.Warn("Invalid request body: %v", err)
		if errors.Is(err, req.ErrBodyTooLarge) {
			h.problem(c, res.Problem(http.StatusRequestEntityTooLarge, "Request body too large.", err.Error()))
			return in, false
		}
		h.problem(c, res.Problem(http.StatusBadRequest, "Invalid request body.", err.Error()))
		return in, false
	}
	return in, true
}

// writeError maps a service error onto a problem response.
func (h *CustomerHandler) writeError(c *gin.Context, err error) {
	var (
		verrs    domain.ValidationErrors
		notFound *domain.NotFoundError
		dup      *domain.DuplicateError
	)

	switch {
	case errors.As(err, &verrs):
		p := res.Problem(http.StatusBadRequest, "One or more validation errors occurred.", verrs.Error())
		p.Errors = verrs.ByField()
		h.problem(c, p)
	case errors.As(err, &notFound):
		h.problem(c, res.Problem(http.StatusNotFound, "Not Found",
			fmt.Sprintf("Customer with id '%s' was not found.", notFound.ID)))
	case errors.Is(err, domain.ErrNotFound):
		h.problem(c, res.Problem(http.StatusNotFound, "Not Found", "Customer was not found."))
	case errors.As(err, &dup):
		h.problem(c, res.Problem(http.StatusConflict, "Email address already exists.",
			fmt.Sprintf("A customer with email '%s' already exists in the system.", dup.Value)))
	case errors.Is(err, domain.ErrDuplicate):
		h.problem(c, res.Problem(http.StatusConflict, "Email address already exists.",
			"A customer with this email already exists in the system."))
	case errors.Is(err, domain.ErrTransient):
		h.log.Error("Customer store unavailable: %v", err)
		h.problem(c, res.Problem(http.StatusServiceUnavailable, "Service Unavailable",
			"The customer store is temporarily unavailable. Please retry."))
	default:
		h.log.Error("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		h.problem(c, res.Problem(http.StatusInternalServerError, "An unexpected error occurred.", ""))
	}
}

func (h *CustomerHandler) problem(c *gin.Context, p res.ProblemDetails) {
	p.Instance = c.Request.URL.Path
	p.TraceID = c.GetString(middleware.RequestIDKey)
	res.WriteProblem(c.Writer, p)
	c.Abort()
}

// parseListParams reads paging and filters from the query string. Missing
// paging values take their defaults; the service checks their range.
func parseListParams(c *gin.Context) (domain.ListParams, domain.ValidationErrors) {
	var verrs domain.ValidationErrors
	params := domain.ListParams{Page: 1, PageSize: domain.DefaultPageSize}

	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verrs.Add("page", "Page must be a whole number")
		} else {
			params.Page = n
		}
	}
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verrs.Add("pageSize", "Page size must be a whole number")
		} else {
			params.PageSize = n
		}
	}

	params.Filter = domain.CustomerFilter{
		Name:   strings.TrimSpace(c.Query("name")),
		Email:  strings.TrimSpace(c.Query("email")),
		Phone:  strings.TrimSpace(c.Query("phone")),
		Search: strings.TrimSpace(c.Query("search")),
		City:   strings.TrimSpace(c.Query("city")),
	}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			verrs.Add("from", "From must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		} else {
			params.Filter.From = &t
		}
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			verrs.Add("to", "To must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		} else {
			if dateOnly {
				t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
			}
			params.Filter.To = &t
		}
	}

	return params, verrs
}

// parseDate accepts an RFC 3339 timestamp or a bare date, which is read as
// midnight UTC.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
