package ports

import (
	"context"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// CreateSweetInput carries all data needed to add a sweet to the catalog.
type CreateSweetInput struct {
	Name     string
	Category domain.Category
	Price    float64
	Quantity int
}

// UpdateSweetInput carries a partial update. QuantitySet is true when the
// caller tried to change quantity, which is rejected.
type UpdateSweetInput struct {
	SweetChanges
	QuantitySet bool
}

// SweetService defines use-case operations for the catalog.
type SweetService interface {
	Create(ctx context.Context, input CreateSweetInput) (*domain.Sweet, error)
	List(ctx context.Context) ([]*domain.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]*domain.Sweet, error)
	Get(ctx context.Context, id string) (*domain.Sweet, error)
	Update(ctx context.Context, id string, input UpdateSweetInput) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
	Restock(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
}
