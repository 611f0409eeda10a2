package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/internal/repository"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, name, email, phone, street, city, state, postal_code, country, signup_date`

// PostgresCustomerRepository stores customers in PostgreSQL.
type PostgresCustomerRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresCustomerRepository creates a customer store over a pgx pool.
func NewPostgresCustomerRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		db:  db,
		log: log,
	}
}

var _ repository.CustomerRepository = (*PostgresCustomerRepository)(nil)

// Insert adds a customer. The unique index on lower(email) rejects duplicates.
func (r *PostgresCustomerRepository) Insert(ctx context.Context, customer domain.Customer) (int64, error) {
	query := `
		INSERT INTO customers (name, email, phone, street, city, state, postal_code, country, signup_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Street,
		customer.City,
		customer.State,
		customer.PostalCode,
		customer.Country,
		customer.SignupDate.UTC(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.NewDuplicateError("customer", "email", customer.Email)
		}
		return 0, classifyError("failed to insert customer", err)
	}

	return id, nil
}

// Get returns a customer by id.
func (r *PostgresCustomerRepository) Get(ctx context.Context, id int64) (domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, domain.NewNotFoundError("customer", id)
		}
		return domain.Customer{}, classifyError("failed to get customer", err)
	}
	return customer, nil
}

// Query counts and pages the matching customers inside one read-only
// repeatable-read transaction so both see the same snapshot.
func (r *PostgresCustomerRepository) Query(ctx context.Context, q repository.CustomerQuery) (int64, []domain.Customer, error) {
	where, args := buildWhere(q.Filter)
	countQuery := `SELECT count(*) FROM customers` + where
	pageQuery, pageArgs := buildPageQuery(where, args, q.Offset, q.Limit)

	var (
		total     int64
		customers []domain.Customer
	)
	txOptions := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.db, txOptions, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, pageQuery, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		customers = make([]domain.Customer, 0, q.Limit)
		for rows.Next() {
			c, err := scanCustomer(rows)
			if err != nil {
				return err
			}
			customers = append(customers, c)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, classifyError("failed to query customers", err)
	}

	return total, customers, nil
}

// Update replaces the mutable fields of a customer. A zero SignupDate keeps
// the stored one.
func (r *PostgresCustomerRepository) Update(ctx context.Context, id int64, customer domain.Customer) (domain.Customer, error) {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, street = $4, city = $5, state = $6,
			postal_code = $7, country = $8, signup_date = COALESCE($9::timestamptz, signup_date)
		WHERE id = $10
		RETURNING ` + customerColumns

	var signupDate *time.Time
	if !customer.SignupDate.IsZero() {
		t := customer.SignupDate.UTC()
		signupDate = &t
	}

	updated, err := scanCustomer(r.db.QueryRow(
		ctx,
		query,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Street,
		customer.City,
		customer.State,
		customer.PostalCode,
		customer.Country,
		signupDate,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, domain.NewNotFoundError("customer", id)
		}
		if isUniqueViolation(err) {
			return domain.Customer{}, domain.NewDuplicateError("customer", "email", customer.Email)
		}
		return domain.Customer{}, classifyError("failed to update customer", err)
	}

	return updated, nil
}

// Delete removes a customer.
func (r *PostgresCustomerRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM customers WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return classifyError("failed to delete customer", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("customer", id)
	}

	return nil
}

// Ping checks that the database answers.
func (r *PostgresCustomerRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return classifyError("failed to ping database", err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Street,
		&c.City,
		&c.State,
		&c.PostalCode,
		&c.Country,
		&c.SignupDate,
	)
	if err != nil {
		return domain.Customer{}, err
	}
	c.SignupDate = c.SignupDate.UTC()
	return c, nil
}

// buildWhere renders the filter as a WHERE clause with positional arguments.
// It returns an empty clause when no predicate is set.
func buildWhere(f domain.CustomerFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Name != "" {
		conds = append(conds, "name ILIKE "+arg(likePattern(f.Name)))
	}
	if f.Email != "" {
		conds = append(conds, "email ILIKE "+arg(likePattern(f.Email)))
	}
	if f.Phone != "" {
		conds = append(conds, "phone ILIKE "+arg(likePattern(f.Phone)))
	}
	if f.Search != "" {
		p := arg(likePattern(f.Search))
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR phone ILIKE %[1]s)", p))
	}
	if f.City != "" {
		conds = append(conds, "city = "+arg(f.City))
	}
	if f.From != nil {
		conds = append(conds, "signup_date >= "+arg(f.From.UTC()))
	}
	if f.To != nil {
		conds = append(conds, "signup_date <= "+arg(f.To.UTC()))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildPageQuery appends ordering and paging to a filtered select. Limit 0
// means no limit.
func buildPageQuery(where string, args []any, offset, limit int) (string, []any) {
	pageArgs := append([]any(nil), args...)
	var sb strings.Builder
	sb.WriteString(`SELECT ` + customerColumns + ` FROM customers`)
	sb.WriteString(where)
	sb.WriteString(` ORDER BY signup_date DESC, id DESC`)
	if limit > 0 {
		pageArgs = append(pageArgs, limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(pageArgs)))
	}
	if offset > 0 {
		pageArgs = append(pageArgs, offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(pageArgs)))
	}
	return sb.String(), pageArgs
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns user input into a substring pattern with LIKE
// metacharacters taken literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// classifyError wraps err with action and marks connectivity failures and
// timeouts as domain.ErrTransient.
func classifyError(action string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %w", action, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
