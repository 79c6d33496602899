package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

func newSweetSvc() (*SweetService, *stubSweetRepo) {
	repo := newStubSweetRepo()
	return NewSweetService(repo, discardLogger), repo
}

func ptr[T any](v T) *T { return &v }

func cakeInput() ports.CreateSweetInput {
	return ports.CreateSweetInput{Name: "Chocolate Cake", Category: domain.CategoryCake, Price: 15.99, Quantity: 10}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestSweetService_Create_Success(t *testing.T) {
	svc, repo := newSweetSvc()

	s, err := svc.Create(context.Background(), cakeInput())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Chocolate Cake", s.Name)
	assert.Equal(t, 10, s.Quantity)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Len(t, repo.byID, 1)
}

func TestSweetService_Create_DuplicateName(t *testing.T) {
	svc, repo := newSweetSvc()

	_, err := svc.Create(context.Background(), cakeInput())
	require.NoError(t, err)

	dup := cakeInput()
	dup.Name = "  Chocolate Cake "
	_, err = svc.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrSweetExists)
	assert.Len(t, repo.byID, 1)
}

// ---------------------------------------------------------------------------
// List / Search
// ---------------------------------------------------------------------------

func TestSweetService_List_EmptyIsNotFound(t *testing.T) {
	svc, _ := newSweetSvc()

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSweets)
}

func TestSweetService_List_RepoError(t *testing.T) {
	svc, repo := newSweetSvc()
	repo.listErr = errors.New("db unavailable")

	_, err := svc.List(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoSweets)
}

func seedCatalog(repo *stubSweetRepo) {
	repo.seed("Lemon Drop", domain.CategoryCandy, 5, 20)
	repo.seed("Oatmeal Cookie", domain.CategoryCookie, 10, 8)
	repo.seed("Chocolate Cake", domain.CategoryCake, 15.99, 3)
}

func prices(sweets []*domain.Sweet) []float64 {
	out := make([]float64, 0, len(sweets))
	for _, s := range sweets {
		out = append(out, s.Price)
	}
	sort.Float64s(out)
	return out
}

func TestSweetService_Search_PriceRangeInclusive(t *testing.T) {
	svc, repo := newSweetSvc()
	seedCatalog(repo)

	got, err := svc.Search(context.Background(), ports.SweetFilter{MinPrice: ptr(6.0), MaxPrice: ptr(20.0)})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15.99}, prices(got))

	got, err = svc.Search(context.Background(), ports.SweetFilter{MinPrice: ptr(5.0), MaxPrice: ptr(10.0)})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10}, prices(got))
}

func TestSweetService_Search_Filters(t *testing.T) {
	svc, repo := newSweetSvc()
	seedCatalog(repo)

	cases := []struct {
		name   string
		filter ports.SweetFilter
		want   []float64
	}{
		{"name substring case-insensitive", ports.SweetFilter{Name: "cOOk"}, []float64{10}},
		{"category exact", ports.SweetFilter{Category: domain.CategoryCandy}, []float64{5}},
		{"name and category", ports.SweetFilter{Name: "o", Category: domain.CategoryCake}, []float64{15.99}},
		{"no filters returns all", ports.SweetFilter{}, []float64{5, 10, 15.99}},
		{"min only", ports.SweetFilter{MinPrice: ptr(10.0)}, []float64{10, 15.99}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Search(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, prices(got))
		})
	}
}

func TestSweetService_Search_NoMatch(t *testing.T) {
	svc, repo := newSweetSvc()
	seedCatalog(repo)

	_, err := svc.Search(context.Background(), ports.SweetFilter{Category: domain.CategoryPie})
	assert.ErrorIs(t, err, domain.ErrNoSweets)
}

func TestSweetService_Search_InvertedRange(t *testing.T) {
	svc, repo := newSweetSvc()
	seedCatalog(repo)

	_, err := svc.Search(context.Background(), ports.SweetFilter{MinPrice: ptr(20.0), MaxPrice: ptr(6.0)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "minPrice", ve.Fields[0].Field)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestSweetService_Update_QuantityRejected(t *testing.T) {
	svc, repo := newSweetSvc()
	s := repo.seed("Fudge", domain.CategoryCandy, 3, 7)

	_, err := svc.Update(context.Background(), s.ID, ports.UpdateSweetInput{
		SweetChanges: ports.SweetChanges{Price: ptr(4.0)},
		QuantitySet:  true,
	})
	assert.ErrorIs(t, err, domain.ErrQuantityNotUpdatable)
	assert.Equal(t, 7, repo.quantity(s.ID))
	assert.Equal(t, 0, repo.updates)
}

func TestSweetService_Update_NotFound(t *testing.T) {
	svc, _ := newSweetSvc()

	_, err := svc.Update(context.Background(), "missing", ports.UpdateSweetInput{SweetChanges: ports.SweetChanges{Price: ptr(1.0)}})
	assert.ErrorIs(t, err, domain.ErrSweetNotFound)
}

func TestSweetService_Update_NameConflict(t *testing.T) {
	svc, repo := newSweetSvc()
	repo.seed("Fudge", domain.CategoryCandy, 3, 7)
	pie := repo.seed("Apple Pie", domain.CategoryPie, 12, 2)

	_, err := svc.Update(context.Background(), pie.ID, ports.UpdateSweetInput{SweetChanges: ports.SweetChanges{Name: ptr("Fudge")}})
	assert.ErrorIs(t, err, domain.ErrSweetExists)
}

func TestSweetService_Update_SameNameIsNotAConflict(t *testing.T) {
	svc, repo := newSweetSvc()
	pie := repo.seed("Apple Pie", domain.CategoryPie, 12, 2)

	got, err := svc.Update(context.Background(), pie.ID, ports.UpdateSweetInput{SweetChanges: ports.SweetChanges{
		Name:  ptr("Apple Pie"),
		Price: ptr(13.5),
	}})
	require.NoError(t, err)
	assert.Equal(t, 13.5, got.Price)
	assert.Equal(t, 2, got.Quantity)
}

func TestSweetService_Update_EmptyChangesReturnsCurrent(t *testing.T) {
	svc, repo := newSweetSvc()
	pie := repo.seed("Apple Pie", domain.CategoryPie, 12, 2)

	got, err := svc.Update(context.Background(), pie.ID, ports.UpdateSweetInput{})
	require.NoError(t, err)
	assert.Equal(t, pie.ID, got.ID)
	assert.Equal(t, 0, repo.updates)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestSweetService_Delete(t *testing.T) {
	svc, repo := newSweetSvc()
	s := repo.seed("Fudge", domain.CategoryCandy, 3, 7)

	require.NoError(t, svc.Delete(context.Background(), s.ID))
	assert.Empty(t, repo.byID)
	assert.ErrorIs(t, svc.Delete(context.Background(), s.ID), domain.ErrSweetNotFound)
}

// ---------------------------------------------------------------------------
// Purchase / Restock
// ---------------------------------------------------------------------------

func TestSweetService_Purchase(t *testing.T) {
	cases := []struct {
		stock, buy int
		wantErr    error
		wantLeft   int
	}{
		{stock: 10, buy: 3, wantLeft: 7},
		{stock: 10, buy: 10, wantLeft: 0},
		{stock: 10, buy: 11, wantErr: domain.ErrInsufficientStock, wantLeft: 10},
		{stock: 0, buy: 1, wantErr: domain.ErrInsufficientStock, wantLeft: 0},
	}
	for _, tc := range cases {
		svc, repo := newSweetSvc()
		s := repo.seed("Fudge", domain.CategoryCandy, 3, tc.stock)

		got, err := svc.Purchase(context.Background(), s.ID, tc.buy)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr)
		} else {
			require.NoError(t, err)
			assert.Equal(t, tc.wantLeft, got.Quantity)
		}
		assert.Equal(t, tc.wantLeft, repo.quantity(s.ID), "stock %d buy %d", tc.stock, tc.buy)
	}
}

func TestSweetService_Purchase_InvalidQuantity(t *testing.T) {
	svc, repo := newSweetSvc()
	s := repo.seed("Fudge", domain.CategoryCandy, 3, 5)

	_, err := svc.Purchase(context.Background(), s.ID, 0)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 5, repo.quantity(s.ID))
}

func TestSweetService_Purchase_NotFound(t *testing.T) {
	svc, _ := newSweetSvc()

	_, err := svc.Purchase(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, domain.ErrSweetNotFound)
}

func TestSweetService_Purchase_ConcurrentNeverOversells(t *testing.T) {
	svc, repo := newSweetSvc()
	s := repo.seed("Fudge", domain.CategoryCandy, 3, 10)

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), s.ID, 1)
			if err == nil {
				ok.Add(1)
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(15), rejected.Load())
	assert.Equal(t, 0, repo.quantity(s.ID))
}

func TestSweetService_Restock(t *testing.T) {
	for _, k := range []int{0, 1, 25} {
		svc, repo := newSweetSvc()
		s := repo.seed("Fudge", domain.CategoryCandy, 3, 4)

		got, err := svc.Restock(context.Background(), s.ID, k)
		require.NoError(t, err)
		assert.Equal(t, 4+k, got.Quantity)
		assert.Equal(t, 4+k, repo.quantity(s.ID))
	}
}

func TestSweetService_Restock_Errors(t *testing.T) {
	svc, repo := newSweetSvc()
	s := repo.seed("Fudge", domain.CategoryCandy, 3, 4)

	_, err := svc.Restock(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, domain.ErrSweetNotFound)

	_, err = svc.Restock(context.Background(), s.ID, -1)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 4, repo.quantity(s.ID))
}
