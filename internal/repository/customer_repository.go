//go:generate mockery --name=CustomerRepository --output=../mocks --case=underscore
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// CustomerQuery is a filtered page request against the store.
type CustomerQuery struct {
	Filter domain.CustomerFilter
	Offset int
	Limit  int
}

// CustomerRepository is the customer store.
//
// Implementations enforce case-insensitive email uniqueness before commit and
// order query results by signup date then id, both descending.
type CustomerRepository interface {
	// Insert stores a new record and returns its assigned id. The record's ID
	// is ignored. Fails with domain.ErrDuplicate when the email is taken.
	Insert(ctx context.Context, customer domain.Customer) (int64, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
	// Query returns the number of records matching the filter and the
	// requested slice of them, read from one consistent snapshot.
	Query(ctx context.Context, q CustomerQuery) (int64, []domain.Customer, error)
	// Update replaces every mutable field of record id. A zero SignupDate keeps
	// the stored one. Returns the stored record after the update.
	Update(ctx context.Context, id int64, customer domain.Customer) (domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// InMemoryCustomerRepository keeps customers in process memory.
type InMemoryCustomerRepository struct {
	customers map[int64]domain.Customer
	emails    map[string]int64
	nextID    int64
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository creates an empty in-memory store.
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[int64]domain.Customer),
		emails:    make(map[string]int64),
		log:       log,
	}
}

// Insert stores a new customer and assigns the next id.
func (r *InMemoryCustomerRepository) Insert(ctx context.Context, customer domain.Customer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := domain.NormalizeEmail(customer.Email)
	if _, taken := r.emails[key]; taken {
		return 0, domain.NewDuplicateError("customer", "email", customer.Email)
	}

	r.nextID++
	customer.ID = r.nextID
	customer.SignupDate = customer.SignupDate.UTC()
	r.customers[customer.ID] = cloneCustomer(customer)
	r.emails[key] = customer.ID

	r.log.Debug("Inserted customer id=%d", customer.ID)
	return customer.ID, nil
}

// Get returns the customer with the given id.
func (r *InMemoryCustomerRepository) Get(ctx context.Context, id int64) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return domain.Customer{}, domain.NewNotFoundError("customer", id)
	}
	return cloneCustomer(customer), nil
}

// Query filters, orders and slices the stored customers under one read lock.
func (r *InMemoryCustomerRepository) Query(ctx context.Context, q CustomerQuery) (int64, []domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matched := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if q.Filter.Matches(c) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.SignupDate.Equal(b.SignupDate) {
			return a.SignupDate.After(b.SignupDate)
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	page := make([]domain.Customer, 0, end-start)
	for _, c := range matched[start:end] {
		page = append(page, cloneCustomer(c))
	}
	return total, page, nil
}

// Update replaces the mutable fields of an existing customer.
func (r *InMemoryCustomerRepository) Update(ctx context.Context, id int64, customer domain.Customer) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[id]
	if !exists {
		return domain.Customer{}, domain.NewNotFoundError("customer", id)
	}

	newKey := domain.NormalizeEmail(customer.Email)
	if owner, taken := r.emails[newKey]; taken && owner != id {
		return domain.Customer{}, domain.NewDuplicateError("customer", "email", customer.Email)
	}

	customer.ID = id
	if customer.SignupDate.IsZero() {
		customer.SignupDate = existing.SignupDate
	}
	customer.SignupDate = customer.SignupDate.UTC()

	delete(r.emails, domain.NormalizeEmail(existing.Email))
	r.emails[newKey] = id
	r.customers[id] = cloneCustomer(customer)

	return cloneCustomer(customer), nil
}

// Delete removes a customer.
func (r *InMemoryCustomerRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[id]
	if !exists {
		return domain.NewNotFoundError("customer", id)
	}

	delete(r.emails, domain.NormalizeEmail(existing.Email))
	delete(r.customers, id)
	return nil
}

// Ping always succeeds for the in-memory store.
func (r *InMemoryCustomerRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// cloneCustomer copies the optional fields so callers cannot mutate stored
// records through shared pointers.
func cloneCustomer(c domain.Customer) domain.Customer {
	c.Street = cloneString(c.Street)
	c.City = cloneString(c.City)
	c.State = cloneString(c.State)
	c.PostalCode = cloneString(c.PostalCode)
	c.Country = cloneString(c.Country)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
