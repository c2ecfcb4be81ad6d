package service

import (
	"context"
	"fmt"
	"sort"

	"nautia-api/internal/domain"
	"nautia-api/internal/repository"
)

// Stats is the admin dashboard aggregate.
type Stats struct {
	Products       int             `json:"products"`
	Leads          int             `json:"leads"`
	Appointments   int             `json:"appointments"`
	Events         int             `json:"events"`
	CategoryCounts []CategoryCount `json:"category_counts"`
}

// CategoryCount is one product-category bucket. Registered reports whether
// the label exists as a Category record or was only ever typed free-text on
// products.
type CategoryCount struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Registered bool   `json:"registered"`
}

// StatsService computes admin dashboard aggregates.
type StatsService interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type statsService struct {
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	leads        repository.LeadRepository
	appointments repository.AppointmentRepository
	events       repository.EventRepository
}

// NewStatsService creates a new instance of StatsService
func NewStatsService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	leads repository.LeadRepository,
	appointments repository.AppointmentRepository,
	events repository.EventRepository,
) StatsService {
	return &statsService{
		products:     products,
		categories:   categories,
		leads:        leads,
		appointments: appointments,
		events:       events,
	}
}

// GetStats counts every entity and builds per-category product buckets.
// Registered product categories come first, even at count zero; category
// labels that were entered free-text and never registered get ad-hoc
// buckets rather than being dropped. Label drift is tolerated, not hidden.
func (s *statsService) GetStats(ctx context.Context) (*Stats, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	leadCount, err := s.leads.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	appointmentCount, err := s.appointments.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	eventCount, err := s.events.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	registered, err := s.categories.List(ctx, domain.CategoryTypeProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to list product categories: %w", err)
	}

	byCategory, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}

	seen := make(map[string]bool, len(registered))
	counts := make([]CategoryCount, 0, len(registered))
	for _, category := range registered {
		if seen[category.Name] {
			continue
		}
		seen[category.Name] = true
		counts = append(counts, CategoryCount{
			Name:       category.Name,
			Count:      byCategory[category.Name],
			Registered: true,
		})
	}

	adhoc := make([]string, 0)
	for name := range byCategory {
		if !seen[name] {
			adhoc = append(adhoc, name)
		}
	}
	sort.Strings(adhoc)
	for _, name := range adhoc {
		counts = append(counts, CategoryCount{
			Name:  name,
			Count: byCategory[name],
		})
	}

	return &Stats{
		Products:       productCount,
		Leads:          leadCount,
		Appointments:   appointmentCount,
		Events:         eventCount,
		CategoryCounts: counts,
	}, nil
}
