package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

func strPtr(s string) *string { return &s }

func newCustomer(name, email string, signup time.Time) domain.Customer {
	return domain.Customer{
		Name:       name,
		Email:      email,
		Phone:      "+46701234567",
		SignupDate: signup,
	}
}

func TestInMemoryCustomerRepository_StoredRecordsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCustomerRepository(logger.Discard())

	c := newCustomer("Alice", "alice@example.com", time.Now().UTC())
	c.City = strPtr("Malmö")
	id, err := repo.Insert(ctx, c)
	require.NoError(t, err)

	*c.City = "Lund"
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.City)
	assert.Equal(t, "Malmö", *got.City)

	*got.City = "Ystad"
	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Malmö", *again.City)
}

func TestInMemoryCustomerRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewInMemoryCustomerRepository(logger.Discard())
	_, err := repo.Insert(ctx, newCustomer("A", "a@example.com", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
