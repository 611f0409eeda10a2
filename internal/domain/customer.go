package domain

import (
	"strings"
	"time"
)

const (
	// DefaultPageSize is used when a list request does not name a page size.
	DefaultPageSize = 50
	// MaxPageSize bounds a single list page.
	MaxPageSize = 200
)

// Customer is a stored customer record. Optional address fields are nil when
// absent and serialize as JSON null.
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Street     *string   `json:"street"`
	City       *string   `json:"city"`
	State      *string   `json:"state"`
	PostalCode *string   `json:"postalCode"`
	Country    *string   `json:"country"`
	SignupDate time.Time `json:"signupDate"`
}

// CustomerInput is the writable part of a customer, as sent on create and
// update. ID is accepted on update bodies only to be checked against the path.
type CustomerInput struct {
	ID         *int64     `json:"id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Street     *string    `json:"street,omitempty"`
	City       *string    `json:"city,omitempty"`
	State      *string    `json:"state,omitempty"`
	PostalCode *string    `json:"postalCode,omitempty"`
	Country    *string    `json:"country,omitempty"`
	SignupDate *time.Time `json:"signupDate,omitempty"`
}

// Normalize trims every string field and turns blank optional fields into nil.
func (in CustomerInput) Normalize() CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Street = trimOptional(in.Street)
	in.City = trimOptional(in.City)
	in.State = trimOptional(in.State)
	in.PostalCode = trimOptional(in.PostalCode)
	in.Country = trimOptional(in.Country)
	return in
}

// ToCustomer builds a record from the input. SignupDate is left zero when the
// input does not carry one.
func (in CustomerInput) ToCustomer(id int64) Customer {
	c := Customer{
		ID:         id,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
	if in.SignupDate != nil {
		c.SignupDate = *in.SignupDate
	}
	return c
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CustomerFilter holds the AND-combined list predicates. Zero values disable
// a predicate.
type CustomerFilter struct {
	Name   string
	Email  string
	Phone  string
	Search string // matches name, email or phone
	City   string
	From   *time.Time
	To     *time.Time
}

// Matches reports whether c satisfies every predicate of f. Substring
// predicates are case-insensitive, city is exact and the date range is
// inclusive.
func (f CustomerFilter) Matches(c Customer) bool {
	if f.Name != "" && !containsFold(c.Name, f.Name) {
		return false
	}
	if f.Email != "" && !containsFold(c.Email, f.Email) {
		return false
	}
	if f.Phone != "" && !containsFold(c.Phone, f.Phone) {
		return false
	}
	if f.Search != "" &&
		!containsFold(c.Name, f.Search) &&
		!containsFold(c.Email, f.Search) &&
		!containsFold(c.Phone, f.Search) {
		return false
	}
	if f.City != "" && (c.City == nil || *c.City != f.City) {
		return false
	}
	if f.From != nil && c.SignupDate.Before(*f.From) {
		return false
	}
	if f.To != nil && c.SignupDate.After(*f.To) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ListParams is a list request as seen by the service.
type ListParams struct {
	Filter   CustomerFilter
	Page     int
	PageSize int
}

// Offset returns the number of records skipped before the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CustomerPage is one page of a filtered, ordered customer list.
type CustomerPage struct {
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Items    []Customer `json:"items"`
}

// NormalizeEmail is the key under which email uniqueness is enforced.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
