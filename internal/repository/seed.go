package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hanssonfredrik/customers/internal/domain"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// SeedCustomers returns the demo customers, signed up relative to now.
func SeedCustomers(now time.Time) []domain.Customer {
	s := func(v string) *string { return &v }
	now = now.UTC().Truncate(time.Microsecond)
	return []domain.Customer{
		{
			Name:       "Alice Andersson",
			Email:      "alice.andersson@example.com",
			Phone:      "+46701234567",
			Street:     s("Stora Gatan 1"),
			City:       s("Malmö"),
			State:      s("Skåne"),
			PostalCode: s("21143"),
			Country:    s("Sweden"),
			SignupDate: now.AddDate(0, 0, -30),
		},
		{
			Name:       "Björn Berg",
			Email:      "bjorn.berg@example.com",
			Phone:      "+46707654321",
			Street:     s("Kungsgatan 42"),
			City:       s("Stockholm"),
			State:      s("Stockholm"),
			PostalCode: s("11156"),
			Country:    s("Sweden"),
			SignupDate: now.AddDate(0, 0, -20),
		},
		{
			Name:       "Carla Cruz",
			Email:      "carla.cruz@example.com",
			Phone:      "+46709876543",
			Street:     s("Avenyn 15"),
			City:       s("Göteborg"),
			State:      s("Västra Götaland"),
			PostalCode: s("41136"),
			Country:    s("Sweden"),
			SignupDate: now.AddDate(0, 0, -10),
		},
	}
}

// Seed inserts the demo customers when the store is empty. Records whose email
// already exists are skipped, so concurrent starts are harmless.
func Seed(ctx context.Context, repo CustomerRepository, now time.Time, log *logger.Logger) (int, error) {
	total, _, err := repo.Query(ctx, CustomerQuery{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to check customers before seeding: %w", err)
	}
	if total > 0 {
		log.Debug("Store already has %d customers, skipping seed", total)
		return 0, nil
	}

	inserted := 0
	for _, c := range SeedCustomers(now) {
		if _, err := repo.Insert(ctx, c); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return inserted, fmt.Errorf("failed to seed customer %s: %w", c.Email, err)
		}
		inserted++
	}
	log.Info("Seeded %d demo customers", inserted)
	return inserted, nil
}
