//go:generate mockery --name=CustomerService --output=../mocks --case=underscore
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/metrics"
	"github.com/hanssonfredrik/customers/internal/repository"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// CustomerService is the customer business layer.
type CustomerService interface {
	List(ctx context.Context, params domain.ListParams) (domain.CustomerPage, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
	Create(ctx context.Context, in domain.CustomerInput) (domain.Customer, error)
	Update(ctx context.Context, id int64, in domain.CustomerInput) error
	Delete(ctx context.Context, id int64) error
}

//go:generate mockery --name=EventPublisher --output=../mocks --case=underscore

// EventPublisher delivers change events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.CustomerEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, domain.CustomerEvent) error { return nil }

type customerService struct {
	repo      repository.CustomerRepository
	publisher EventPublisher
	metrics   metrics.CustomerMetrics
	log       *logger.Logger
	now       func() time.Time
}

// NewCustomerService creates the customer service. A nil publisher or metrics
// disables that side effect.
func NewCustomerService(
	repo repository.CustomerRepository,
	publisher EventPublisher,
	m metrics.CustomerMetrics,
	log *logger.Logger,
) CustomerService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if m == nil {
		m = metrics.NopCustomerMetrics()
	}
	return &customerService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *customerService) List(ctx context.Context, params domain.ListParams) (page domain.CustomerPage, err error) {
	defer func() { s.observe("list", err) }()

	if verrs := validateListParams(params); verrs.HasErrors() {
		return domain.CustomerPage{}, verrs
	}

	s.log.Debug("Listing customers page=%d pageSize=%d", params.Page, params.PageSize)
	total, items, err := s.repo.Query(ctx, repository.CustomerQuery{
		Filter: params.Filter,
		Offset: params.Offset(),
		Limit:  params.PageSize,
	})
	if err != nil {
		return domain.CustomerPage{}, err
	}
	if items == nil {
		items = []domain.Customer{}
	}

	return domain.CustomerPage{
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Items:    items,
	}, nil
}

func (s *customerService) Get(ctx context.Context, id int64) (customer domain.Customer, err error) {
	defer func() { s.observe("get", err) }()

	s.log.Debug("Getting customer by ID: %d", id)
	if id <= 0 {
		return domain.Customer{}, domain.NewNotFoundError("customer", id)
	}
	return s.repo.Get(ctx, id)
}

func (s *customerService) Create(ctx context.Context, in domain.CustomerInput) (customer domain.Customer, err error) {
	defer func() { s.observe("create", err) }()

	in = in.Normalize()
	if verrs := domain.ValidateCustomerInput(in); verrs.HasErrors() {
		s.log.Debug("Rejected customer create: %v", verrs)
		return domain.Customer{}, verrs
	}

	customer = in.ToCustomer(0)
	if in.SignupDate == nil {
		customer.SignupDate = s.now()
	}
	customer.SignupDate = customer.SignupDate.UTC().Truncate(time.Microsecond)

	id, err := s.repo.Insert(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.ID = id

	s.log.Info("Created customer id=%d", id)
	s.publish(ctx, domain.EventCustomerCreated, id, &customer)
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id int64, in domain.CustomerInput) (err error) {
	defer func() { s.observe("update", err) }()

	in = in.Normalize()
	verrs := domain.ValidateCustomerInput(in)
	if in.ID != nil && *in.ID != id {
		verrs.Add("id", "Id in the body does not match the id in the URL")
	}
	if verrs.HasErrors() {
		s.log.Debug("Rejected customer update id=%d: %v", id, verrs)
		return verrs
	}
	if id <= 0 {
		return domain.NewNotFoundError("customer", id)
	}

	customer := in.ToCustomer(id)
	if in.SignupDate != nil {
		customer.SignupDate = customer.SignupDate.UTC().Truncate(time.Microsecond)
	}

	updated, err := s.repo.Update(ctx, id, customer)
	if err != nil {
		return err
	}

	s.log.Info("Updated customer id=%d", id)
	s.publish(ctx, domain.EventCustomerUpdated, id, &updated)
	return nil
}

func (s *customerService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.observe("delete", err) }()

	if id <= 0 {
		return domain.NewNotFoundError("customer", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Deleted customer id=%d", id)
	s.publish(ctx, domain.EventCustomerDeleted, id, nil)
	return nil
}

// publish sends a change event. Failures are logged and counted, never
// returned: the mutation has already committed.
func (s *customerService) publish(ctx context.Context, eventType domain.EventType, id int64, customer *domain.Customer) {
	event := domain.CustomerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		CustomerID: id,
		Customer:   customer,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish %s event for customer id=%d: %v", eventType, id, err)
		s.metrics.IncEventPublishFailed(string(eventType))
	}
}

func (s *customerService) observe(operation string, err error) {
	result := ResultOf(err)
	if result == metrics.ResultError || result == metrics.ResultUnavailable {
		s.log.Error("Customer %s failed: %v", operation, err)
	}
	s.metrics.ObserveOperation(operation, result)
}

// ResultOf maps an operation error to its metrics result label.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return metrics.ResultConflict
	case errors.Is(err, domain.ErrTransient):
		return metrics.ResultUnavailable
	default:
		return metrics.ResultError
	}
}

func validateListParams(p domain.ListParams) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	if p.Page < 1 {
		verrs.Add("page", "Page must be 1 or greater")
	}
	if p.PageSize < 1 || p.PageSize > domain.MaxPageSize {
		verrs.Add("pageSize", fmt.Sprintf("Page size must be between 1 and %d", domain.MaxPageSize))
		return verrs
	}
	// the offset (page-1)*pageSize must fit in an int
	if p.Page > 1 && p.Page-1 > math.MaxInt/p.PageSize {
		verrs.Add("page", fmt.Sprintf("Page must be %d or less for page size %d", math.MaxInt/p.PageSize+1, p.PageSize))
	}
	return verrs
}
