package customers

import (
	"net/url"
	"strconv"
	"time"
)

// Customer is a customer record as returned by the API.
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

// CustomerInput is the body of create and update requests.
type CustomerInput struct {
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

// Page is one page of a customer listing.
type Page struct {
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Items    []Customer `json:"items"`
}

// ListParams selects a page of customers. Zero values are left to the
// server's defaults.
type ListParams struct {
	Page     int
	PageSize int
	Name     string
	Email    string
	Phone    string
	Search   string
	City     string
	From     *time.Time
	To       *time.Time
}

// Values encodes the parameters as a query string. Encoding sorts keys, so
// equal parameters always produce equal strings.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("name", p.Name)
	set("email", p.Email)
	set("phone", p.Phone)
	set("search", p.Search)
	set("city", p.City)
	if p.From != nil {
		v.Set("from", p.From.UTC().Format(time.RFC3339Nano))
	}
	if p.To != nil {
		v.Set("to", p.To.UTC().Format(time.RFC3339Nano))
	}
	return v
}

func (c Customer) clone() Customer {
	c.Street = cloneString(c.Street)
	c.City = cloneString(c.City)
	c.State = cloneString(c.State)
	c.PostalCode = cloneString(c.PostalCode)
	c.Country = cloneString(c.Country)
	return c
}

func (p Page) clone() Page {
	items := make([]Customer, len(p.Items))
	for i, c := range p.Items {
		items[i] = c.clone()
	}
	p.Items = items
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
