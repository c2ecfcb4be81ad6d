package domain

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost represents a published article. Slug uniqueness is a convention,
// not a constraint; lookups take the first match.
type BlogPost struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	Excerpt     string    `json:"excerpt" db:"excerpt"`
	Content     string    `json:"content" db:"content"`
	Author      string    `json:"author" db:"author"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	ImageKey    string    `json:"image_key,omitempty" db:"image_key"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Category    string    `json:"category" db:"category"`
	ReadTime    string    `json:"read_time" db:"read_time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Event represents a company event or trade-show appearance. Date and Time
// are stored as the ISO strings the site forms submit; date ordering relies
// on the YYYY-MM-DD format sorting lexicographically.
type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time,omitempty" db:"time"`
	Location    string    `json:"location" db:"location"`
	Type        string    `json:"type" db:"type"`
	ImageKey    string    `json:"image_key,omitempty" db:"image_key"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Featured    bool      `json:"featured" db:"featured"`
	Content     string    `json:"content,omitempty" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
