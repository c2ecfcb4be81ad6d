package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nautia-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBlogPostNotFound = errors.New("blog post not found")
)

// BlogRepository defines the interface for blog post data access
type BlogRepository interface {
	Create(ctx context.Context, post *domain.BlogPost) error
	Update(ctx context.Context, post *domain.BlogPost) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	List(ctx context.Context) ([]*domain.BlogPost, error)
	FindRelated(ctx context.Context, category, excludeSlug string, limit int) ([]*domain.BlogPost, error)
}

type blogRepository struct {
	db *sql.DB
}

// NewBlogRepository creates a new instance of BlogRepository
func NewBlogRepository(db *sql.DB) BlogRepository {
	return &blogRepository{db: db}
}

const blogColumns = `id, title, slug, excerpt, content, author, published_at, image_key, image_url, category, read_time, created_at`

// Create inserts a new blog post. Slug uniqueness is not enforced; lookup
// takes the first match.
func (r *blogRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	query := `
		INSERT INTO blog_posts (id, title, slug, excerpt, content, author, published_at, image_key, image_url, category, read_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		post.ID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.Author,
		post.PublishedAt,
		post.ImageKey,
		post.ImageURL,
		post.Category,
		post.ReadTime,
		post.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing blog post
func (r *blogRepository) Update(ctx context.Context, post *domain.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = $2, slug = $3, excerpt = $4, content = $5, author = $6,
		    published_at = $7, image_key = $8, image_url = $9, category = $10, read_time = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		post.ID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.Author,
		post.PublishedAt,
		post.ImageKey,
		post.ImageURL,
		post.Category,
		post.ReadTime,
	)

	if err != nil {
		return fmt.Errorf("failed to update blog post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBlogPostNotFound
	}

	return nil
}

// Delete removes a blog post
func (r *blogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBlogPostNotFound
	}

	return nil
}

// FindBySlug retrieves the first post matching the slug
func (r *blogRepository) FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE slug = $1 ORDER BY created_at ASC LIMIT 1`, blogColumns)

	post, err := scanBlogPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBlogPostNotFound
		}
		return nil, fmt.Errorf("failed to find blog post by slug: %w", err)
	}

	return post, nil
}

// List retrieves all posts newest-first by publication date
func (r *blogRepository) List(ctx context.Context) ([]*domain.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts ORDER BY published_at DESC`, blogColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	return collectBlogPosts(rows)
}

// FindRelated retrieves posts sharing a category, excluding the post being
// viewed, newest-first.
func (r *blogRepository) FindRelated(ctx context.Context, category, excludeSlug string, limit int) ([]*domain.BlogPost, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM blog_posts
		WHERE category = $1 AND slug != $2
		ORDER BY published_at DESC
		LIMIT $3
	`, blogColumns)

	rows, err := r.db.QueryContext(ctx, query, category, excludeSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find related blog posts: %w", err)
	}
	defer rows.Close()

	return collectBlogPosts(rows)
}

func collectBlogPosts(rows *sql.Rows) ([]*domain.BlogPost, error) {
	posts := []*domain.BlogPost{}
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog posts: %w", err)
	}

	return posts, nil
}

func scanBlogPost(row rowScanner) (*domain.BlogPost, error) {
	post := &domain.BlogPost{}
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.Author,
		&post.PublishedAt,
		&post.ImageKey,
		&post.ImageURL,
		&post.Category,
		&post.ReadTime,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}
