package ports

import (
	"context"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// SweetFilter narrows a catalog query. Zero values mean "no filter".
type SweetFilter struct {
	Name     string          // case-insensitive substring
	Category domain.Category // exact match
	MinPrice *float64        // inclusive
	MaxPrice *float64        // inclusive
}

// SweetChanges lists the fields an update may set. Nil means unchanged.
type SweetChanges struct {
	Name     *string
	Category *domain.Category
	Price    *float64
}

// Empty reports whether no field is being changed.
func (c SweetChanges) Empty() bool {
	return c.Name == nil && c.Category == nil && c.Price == nil
}

// SweetRepository defines persistence operations for sweets.
// Unknown or malformed IDs yield domain.ErrSweetNotFound.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	FindByName(ctx context.Context, name string) (*domain.Sweet, error)
	List(ctx context.Context, filter SweetFilter) ([]*domain.Sweet, error)
	Update(ctx context.Context, id string, changes SweetChanges) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts n from quantity only if quantity >= n, in a
	// single atomic operation. Returns domain.ErrInsufficientStock when the
	// record exists but holds fewer than n units.
	DecrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error)
	// IncrementStock atomically adds n to quantity.
	IncrementStock(ctx context.Context, id string, n int) (*domain.Sweet, error)
}
