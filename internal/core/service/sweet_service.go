package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

// SweetService implements the catalog use cases. Authorization happens at
// the route before any of these methods run.
type SweetService struct {
	repo   ports.SweetRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewSweetService(repo ports.SweetRepository, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, logger: logger, now: time.Now}
}

// Create adds a sweet. Names are unique across the catalog.
func (s *SweetService) Create(ctx context.Context, in ports.CreateSweetInput) (*domain.Sweet, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Sweet{
		Name:      name,
		Category:  in.Category,
		Price:     in.Price,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sweet_id", created.ID).Str("name", created.Name).Msg("sweet created")
	return created, nil
}

// List returns the whole catalog. An empty catalog is reported as ErrNoSweets.
func (s *SweetService) List(ctx context.Context) ([]*domain.Sweet, error) {
	return s.find(ctx, ports.SweetFilter{})
}

// Search applies every non-empty filter with AND semantics.
func (s *SweetService) Search(ctx context.Context, filter ports.SweetFilter) ([]*domain.Sweet, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, domain.NewValidationError("minPrice", "minPrice must not exceed maxPrice")
	}
	return s.find(ctx, filter)
}

func (s *SweetService) find(ctx context.Context, filter ports.SweetFilter) ([]*domain.Sweet, error) {
	sweets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(sweets) == 0 {
		return nil, domain.ErrNoSweets
	}
	return sweets, nil
}

func (s *SweetService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial change. Quantity is only changed through
// Purchase and Restock.
func (s *SweetService) Update(ctx context.Context, id string, in ports.UpdateSweetInput) (*domain.Sweet, error) {
	if in.QuantitySet {
		return nil, domain.ErrQuantityNotUpdatable
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := in.SweetChanges
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		changes.Name = &name
		if name != current.Name {
			if err := s.ensureNameFree(ctx, name, current.ID); err != nil {
				return nil, err
			}
		}
	}
	if changes.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sweet_id", id).Msg("sweet updated")
	return updated, nil
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase removes quantity units from stock. On ErrInsufficientStock the
// stored quantity is left untouched.
func (s *SweetService) Purchase(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "quantity must be at least 1")
	}

	sweet, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.logger.Debug().Str("sweet_id", id).Int("requested", quantity).Msg("purchase rejected")
		}
		return nil, err
	}

	s.logger.Info().Str("sweet_id", id).Int("quantity", quantity).Int("remaining", sweet.Quantity).Msg("sweet purchased")
	return sweet, nil
}

func (s *SweetService) Restock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	if quantity < 0 {
		return nil, domain.NewValidationError("quantity", "quantity must be at least 0")
	}

	sweet, err := s.repo.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("sweet_id", id).Int("quantity", quantity).Int("stock", sweet.Quantity).Msg("sweet restocked")
	return sweet, nil
}

// ensureNameFree fails with ErrSweetExists when name belongs to a record
// other than exceptID.
func (s *SweetService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrSweetNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != exceptID:
		return domain.ErrSweetExists
	}
	return nil
}
