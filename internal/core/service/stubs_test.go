package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users     map[string]*domain.User // keyed by email
	createErr error
	seq       int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubTokens struct {
	issued []string
	err    error
}

func (s *stubTokens) Issue(user *domain.User, _ time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	tok := "token-for-" + user.ID
	s.issued = append(s.issued, tok)
	return tok, nil
}

// stubSweetRepo mirrors the Mongo repository semantics, including the
// conditional decrement, behind a mutex so concurrent tests are meaningful.
type stubSweetRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Sweet
	seq     int
	listErr error
	updates int
}

func newStubSweetRepo() *stubSweetRepo {
	return &stubSweetRepo{byID: make(map[string]*domain.Sweet)}
}

func cloneSweet(s *domain.Sweet) *domain.Sweet {
	clone := *s
	return &clone
}

func (r *stubSweetRepo) seed(name string, category domain.Category, price float64, qty int) *domain.Sweet {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s := &domain.Sweet{ID: fmt.Sprintf("sweet-%d", r.seq), Name: name, Category: category, Price: price, Quantity: qty}
	r.byID[s.ID] = s
	return cloneSweet(s)
}

func (r *stubSweetRepo) quantity(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Quantity
}

func (r *stubSweetRepo) Create(_ context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Name == s.Name {
			return nil, domain.ErrSweetExists
		}
	}
	r.seq++
	stored := cloneSweet(s)
	stored.ID = fmt.Sprintf("sweet-%d", r.seq)
	r.byID[stored.ID] = stored
	return cloneSweet(stored), nil
}

func (r *stubSweetRepo) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) FindByName(_ context.Context, name string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.Name == name {
			return cloneSweet(s), nil
		}
	}
	return nil, domain.ErrSweetNotFound
}

// List applies the same filters the real Mongo repo would use.
func (r *stubSweetRepo) List(_ context.Context, f ports.SweetFilter) ([]*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Sweet
	for _, s := range r.byID {
		if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && s.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && s.Price > *f.MaxPrice {
			continue
		}
		out = append(out, cloneSweet(s))
	}
	return out, nil
}

func (r *stubSweetRepo) Update(_ context.Context, id string, c ports.SweetChanges) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	r.updates++
	if c.Name != nil {
		s.Name = *c.Name
	}
	if c.Category != nil {
		s.Category = *c.Category
	}
	if c.Price != nil {
		s.Price = *c.Price
	}
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubSweetRepo) DecrementStock(_ context.Context, id string, n int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if s.Quantity < n {
		return nil, domain.ErrInsufficientStock
	}
	s.Quantity -= n
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) IncrementStock(_ context.Context, id string, n int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += n
	return cloneSweet(s), nil
}
