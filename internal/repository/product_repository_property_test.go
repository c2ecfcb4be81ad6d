package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"nautia-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, category string, description string, brand string, status string) bool {
			ctx := context.Background()

			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Category:    category,
				Description: description,
				ImageURL:    "https://example.com/product.jpg",
				Status:      status,
				Brand:       brand,
				Specs:       []string{"12V", "IPX7"},
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("Failed to create product: %v", err)
				return false
			}
			defer repo.Delete(ctx, product.ID)

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("Failed to find product: %v", err)
				return false
			}

			if retrieved.Name != name || retrieved.Category != category ||
				retrieved.Description != description || retrieved.Brand != brand ||
				retrieved.Status != status {
				t.Logf("Attributes did not round-trip: %+v", retrieved)
				return false
			}
			if len(retrieved.Specs) != 2 || retrieved.Specs[0] != "12V" {
				t.Logf("Specs did not round-trip: %v", retrieved.Specs)
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9 ]{2,40}`),
		gen.RegexMatch(`[A-Za-z][A-Za-z ]{2,20}`),
		gen.AlphaString(),
		gen.RegexMatch(`[A-Za-z]{3,15}`),
		gen.OneConstOf("novo", "usado", "promoção", ""),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductListFiltersByCategory(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	radar := &domain.Product{
		ID: uuid.New(), Name: "Radar X1", Category: "Radares",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	sonar := &domain.Product{
		ID: uuid.New(), Name: "Sonar S2", Category: "Sonares",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	for _, p := range []*domain.Product{radar, sonar} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}
	defer repo.Delete(ctx, radar.ID)
	defer repo.Delete(ctx, sonar.ID)

	filtered, err := repo.List(ctx, "Radares")
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	for _, p := range filtered {
		if p.Category != "Radares" {
			t.Errorf("Filter leaked product with category %q", p.Category)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list all products: %v", err)
	}
	if len(all) < 2 {
		t.Errorf("Expected unfiltered list to include both products, got %d", len(all))
	}
}

func TestProductUpdateAndDeleteMissingID(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	ghost := &domain.Product{
		ID: uuid.New(), Name: "Ghost",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	if err := repo.Update(ctx, ghost); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, ghost.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound on delete, got %v", err)
	}
}

func TestProductCountByCategory(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	products := []*domain.Product{
		{ID: uuid.New(), Name: "A", Category: "BucketTest", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		{ID: uuid.New(), Name: "B", Category: "BucketTest", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		{ID: uuid.New(), Name: "C", Category: "BucketOther", CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}
	for _, p := range products {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
		defer repo.Delete(ctx, p.ID)
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("Failed to count by category: %v", err)
	}
	if counts["BucketTest"] != 2 {
		t.Errorf("Expected 2 products in BucketTest, got %d", counts["BucketTest"])
	}
	if counts["BucketOther"] != 1 {
		t.Errorf("Expected 1 product in BucketOther, got %d", counts["BucketOther"])
	}
}
