// Package repositorytest holds the behaviour every CustomerRepository must
// share, run against each store implementation from its own tests.
package repositorytest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/repository"
)

// Factory returns an empty store for one test.
type Factory func(t *testing.T) repository.CustomerRepository

// Run exercises newRepo against the store contract. Timestamps are kept at
// microsecond precision so database stores compare equal.
func Run(t *testing.T, newRepo Factory) {
	t.Run("InsertAndGet", func(t *testing.T) { testInsertAndGet(t, newRepo(t)) })
	t.Run("IDsIncreaseAndAreNotReused", func(t *testing.T) { testIDs(t, newRepo) })
	t.Run("EmailUniqueness", func(t *testing.T) { testEmailUniqueness(t, newRepo) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newRepo(t)) })
	t.Run("Query", func(t *testing.T) { testQuery(t, newRepo(t)) })
	t.Run("QueryPagesPartitionResults", func(t *testing.T) { testPartition(t, newRepo(t)) })
	t.Run("Ping", func(t *testing.T) { assert.NoError(t, newRepo(t).Ping(context.Background())) })
}

func strPtr(s string) *string { return &s }

func newCustomer(name, email string, signup time.Time) domain.Customer {
	return domain.Customer{
		Name:       name,
		Email:      email,
		Phone:      "+46701234567",
		SignupDate: signup,
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func testInsertAndGet(t *testing.T, repo repository.CustomerRepository) {
	ctx := context.Background()
	signup := now()

	t.Run("required fields only keeps optional fields nil", func(t *testing.T) {
		id, err := repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Nil(t, got.Street)
		assert.Nil(t, got.City)
		assert.Nil(t, got.State)
		assert.Nil(t, got.PostalCode)
		assert.Nil(t, got.Country)
		assert.True(t, signup.Equal(got.SignupDate), "signup %s, got %s", signup, got.SignupDate)
	})

	t.Run("all fields round trip", func(t *testing.T) {
		c := newCustomer("Björn", "bjorn@example.com", signup)
		c.Street = strPtr("Kungsgatan 42")
		c.City = strPtr("Stockholm")
		c.State = strPtr("Stockholm")
		c.PostalCode = strPtr("11156")
		c.Country = strPtr("Sweden")

		id, err := repo.Insert(ctx, c)
		require.NoError(t, err)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		c.ID = id
		assert.Equal(t, c, got)
	})
}

func testIDs(t *testing.T, newRepo Factory) {
	ctx := context.Background()
	repo := newRepo(t)
	signup := now()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := repo.Insert(ctx, newCustomer("C", fmt.Sprintf("c%d@example.com", i), signup))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	require.NoError(t, repo.Delete(ctx, last))
	id, err := repo.Insert(ctx, newCustomer("C", "again@example.com", signup))
	require.NoError(t, err)
	assert.Greater(t, id, last)
}

func testEmailUniqueness(t *testing.T, newRepo Factory) {
	ctx := context.Background()
	signup := now()

	t.Run("insert duplicate ignores case", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		require.NoError(t, err)

		_, err = repo.Insert(ctx, newCustomer("Other", "ALICE@example.com", signup))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDuplicate))

		var dup *domain.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "email", dup.Field)

		total, _, err := repo.Query(ctx, repository.CustomerQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("update to own email is allowed", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		require.NoError(t, err)

		updated, err := repo.Update(ctx, id, newCustomer("Alice B", "Alice@Example.com", time.Time{}))
		require.NoError(t, err)
		assert.Equal(t, "Alice B", updated.Name)
		assert.Equal(t, "Alice@Example.com", updated.Email)
	})

	t.Run("update to another record's email leaves both unchanged", func(t *testing.T) {
		repo := newRepo(t)
		aliceID, err := repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		require.NoError(t, err)
		bobID, err := repo.Insert(ctx, newCustomer("Bob", "bob@example.com", signup))
		require.NoError(t, err)

		_, err = repo.Update(ctx, bobID, newCustomer("Robert", "alice@example.com", signup))
		assert.True(t, errors.Is(err, domain.ErrDuplicate))

		bob, err := repo.Get(ctx, bobID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", bob.Name)
		assert.Equal(t, "bob@example.com", bob.Email)

		alice, err := repo.Get(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", alice.Name)
	})

	t.Run("email is free again after delete", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, id))

		_, err = repo.Insert(ctx, newCustomer("Alice", "alice@example.com", signup))
		assert.NoError(t, err)
	})

	t.Run("concurrent inserts admit one", func(t *testing.T) {
		repo := newRepo(t)
		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			accepted   int
			duplicates int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Insert(ctx, newCustomer("X", "race@example.com", signup))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					accepted++
				case errors.Is(err, domain.ErrDuplicate):
					duplicates++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, accepted)
		assert.Equal(t, 19, duplicates)
	})
}

func testUpdate(t *testing.T, repo repository.CustomerRepository) {
	ctx := context.Background()
	signup := now().Add(-48 * time.Hour)

	c := newCustomer("Alice", "alice@example.com", signup)
	c.City = strPtr("Malmö")
	id, err := repo.Insert(ctx, c)
	require.NoError(t, err)

	t.Run("zero signup date keeps the stored one", func(t *testing.T) {
		in := newCustomer("Alice A", "alice@example.com", time.Time{})
		in.Country = strPtr("Sweden")

		updated, err := repo.Update(ctx, id, in)
		require.NoError(t, err)
		assert.Equal(t, id, updated.ID)
		assert.True(t, signup.Equal(updated.SignupDate))
		// every mutable field is replaced, so the old city is gone
		assert.Nil(t, updated.City)
		require.NotNil(t, updated.Country)
		assert.Equal(t, "Sweden", *updated.Country)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("explicit signup date replaces the stored one", func(t *testing.T) {
		newSignup := signup.Add(time.Hour)
		updated, err := repo.Update(ctx, id, newCustomer("Alice A", "alice@example.com", newSignup))
		require.NoError(t, err)
		assert.True(t, newSignup.Equal(updated.SignupDate))
	})
}

func testNotFound(t *testing.T, repo repository.CustomerRepository) {
	ctx := context.Background()

	_, err := repo.Get(ctx, 424242)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = repo.Update(ctx, 424242, newCustomer("A", "a@example.com", now()))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = repo.Delete(ctx, 424242)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	id, err := repo.Insert(ctx, newCustomer("A", "a@example.com", now()))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func testQuery(t *testing.T, repo repository.CustomerRepository) {
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	seed := []domain.Customer{
		{Name: "Alice Andersson", Email: "alice@example.com", Phone: "+46701111111", City: strPtr("Malmö"), SignupDate: base},
		{Name: "Björn Berg", Email: "bjorn@example.com", Phone: "+46702222222", City: strPtr("Stockholm"), SignupDate: base.AddDate(0, 0, 1)},
		{Name: "Carla Cruz", Email: "carla@sample.org", Phone: "+46703333333", City: strPtr("Göteborg"), SignupDate: base.AddDate(0, 0, 2)},
		{Name: "alice 50%_off", Email: "promo@example.com", Phone: "+46704444444", SignupDate: base.AddDate(0, 0, 2)},
	}
	ids := make([]int64, len(seed))
	for i, c := range seed {
		id, err := repo.Insert(ctx, c)
		require.NoError(t, err)
		ids[i] = id
	}

	day := func(d int) *time.Time { t := base.AddDate(0, 0, d); return &t }

	tests := []struct {
		name    string
		filter  domain.CustomerFilter
		wantIDs []int64
	}{
		{name: "no filter orders by signup then id desc", wantIDs: []int64{ids[3], ids[2], ids[1], ids[0]}},
		{name: "name is case-insensitive substring", filter: domain.CustomerFilter{Name: "ALICE"}, wantIDs: []int64{ids[3], ids[0]}},
		{name: "name matches metacharacters literally", filter: domain.CustomerFilter{Name: "50%_"}, wantIDs: []int64{ids[3]}},
		{name: "underscore is not a wildcard", filter: domain.CustomerFilter{Name: "e_A"}, wantIDs: []int64{}},
		{name: "email substring", filter: domain.CustomerFilter{Email: "sample"}, wantIDs: []int64{ids[2]}},
		{name: "phone substring", filter: domain.CustomerFilter{Phone: "2222"}, wantIDs: []int64{ids[1]}},
		{name: "search spans fields", filter: domain.CustomerFilter{Search: "3333"}, wantIDs: []int64{ids[2]}},
		{name: "city is exact", filter: domain.CustomerFilter{City: "Malmö"}, wantIDs: []int64{ids[0]}},
		{name: "city is case-sensitive", filter: domain.CustomerFilter{City: "malmö"}, wantIDs: []int64{}},
		{name: "range is inclusive", filter: domain.CustomerFilter{From: day(1), To: day(2)}, wantIDs: []int64{ids[3], ids[2], ids[1]}},
		{name: "predicates combine", filter: domain.CustomerFilter{Name: "alice", From: day(1)}, wantIDs: []int64{ids[3]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, items, err := repo.Query(ctx, repository.CustomerQuery{Filter: tt.filter, Limit: 50})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.wantIDs)), total)

			got := make([]int64, 0, len(items))
			for _, c := range items {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func testPartition(t *testing.T, repo repository.CustomerRepository) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 23; i++ {
		// pairs share a signup date so the id tie-break is exercised
		_, err := repo.Insert(ctx, newCustomer("C", fmt.Sprintf("c%02d@example.com", i), base.Add(time.Duration(i/2)*time.Hour)))
		require.NoError(t, err)
	}

	_, all, err := repo.Query(ctx, repository.CustomerQuery{})
	require.NoError(t, err)
	require.Len(t, all, 23)

	var paged []domain.Customer
	for offset := 0; offset < 30; offset += 5 {
		total, items, err := repo.Query(ctx, repository.CustomerQuery{Offset: offset, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(23), total)
		assert.LessOrEqual(t, len(items), 5)
		paged = append(paged, items...)
	}
	assert.Equal(t, all, paged)

	total, items, err := repo.Query(ctx, repository.CustomerQuery{Offset: 100, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(23), total)
	assert.Empty(t, items)
}
