package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the collection contract every record store honors, whether it
// is backed by a key/value blob or a SQL table.
type Repository[T any] interface {
	// FindAll returns the owner's records in insertion order.
	FindAll(ctx context.Context, ownerID string) ([]T, error)
	// FindByID returns ErrNotFound when the record does not exist.
	FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*T, error)
	// Add stores the record and returns it with its generated ID.
	Add(ctx context.Context, entity *T) (*T, error)
	// Update applies patch to the stored record and persists it.
	// It returns (nil, ErrNotFound) when the record does not exist.
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch func(*T) error) (*T, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error)
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Paginate slices items into the requested page.
func Paginate[T any](items []T, page, pageSize int) Paginated[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	total := len(items)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items[start:end],
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
