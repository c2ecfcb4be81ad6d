package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the public catalog. Category is a free-text
// label that usually matches a registered Category name, but nothing enforces
// that; the stats aggregation tolerates unregistered values.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	ImageKey    string    `json:"image_key,omitempty" db:"image_key"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Status      string    `json:"status" db:"status"`
	Brand       string    `json:"brand" db:"brand"`
	Specs       []string  `json:"specs" db:"specs"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Category kinds. Categories of different kinds populate different filter UIs.
const (
	CategoryTypeProduct = "product"
	CategoryTypeBlog    = "blog"
	CategoryTypeEvent   = "event"
)

// Category represents a registered content category.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
