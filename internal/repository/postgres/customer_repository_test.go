package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/hanssonfredrik/customers/internal/domain"
)

func TestBuildWhere(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name      string
		filter    domain.CustomerFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty filter",
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "name only",
			filter:    domain.CustomerFilter{Name: "ali"},
			wantWhere: " WHERE name ILIKE $1",
			wantArgs:  []any{"%ali%"},
		},
		{
			name:      "search reuses one argument",
			filter:    domain.CustomerFilter{Search: "46"},
			wantWhere: " WHERE (name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1)",
			wantArgs:  []any{"%46%"},
		},
		{
			name:      "all predicates",
			filter:    domain.CustomerFilter{Name: "a", Email: "b", Phone: "c", Search: "d", City: "Malmö", From: &from, To: &to},
			wantWhere: " WHERE name ILIKE $1 AND email ILIKE $2 AND phone ILIKE $3 AND (name ILIKE $4 OR email ILIKE $4 OR phone ILIKE $4) AND city = $5 AND signup_date >= $6 AND signup_date <= $7",
			wantArgs:  []any{"%a%", "%b%", "%c%", "%d%", "Malmö", from, to},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildPageQuery(t *testing.T) {
	where, args := buildWhere(domain.CustomerFilter{City: "Malmö"})

	query, pageArgs := buildPageQuery(where, args, 100, 50)
	assert.Equal(t,
		"SELECT "+customerColumns+" FROM customers WHERE city = $1 ORDER BY signup_date DESC, id DESC LIMIT $2 OFFSET $3",
		query)
	assert.Equal(t, []any{"Malmö", 50, 100}, pageArgs)
	// count query args stay untouched
	assert.Equal(t, []any{"Malmö"}, args)

	query, pageArgs = buildPageQuery("", nil, 0, 0)
	assert.Equal(t, "SELECT "+customerColumns+" FROM customers ORDER BY signup_date DESC, id DESC", query)
	assert.Empty(t, pageArgs)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%alice%", likePattern("alice"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantTransient: true},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantTransient: true},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, wantTransient: true},
		{name: "admin shutdown is not connection class", err: &pgconn.PgError{Code: "57P01"}, wantTransient: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantTransient: false},
		{name: "canceled", err: context.Canceled, wantTransient: false},
		{name: "plain error", err: errors.New("boom"), wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("failed to do thing", tt.err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantTransient, errors.Is(err, domain.ErrTransient))
			assert.Contains(t, err.Error(), "failed to do thing")
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}
