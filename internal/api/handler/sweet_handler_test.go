package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

func cake() *domain.Sweet {
	return &domain.Sweet{ID: "s1", Name: "Chocolate Cake", Category: domain.CategoryCake, Price: 12.5, Quantity: 10}
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestSweetHandler_Create(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{sweet: cake()}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodPost, "/api/sweets",
		`{"name":" Chocolate Cake ","category":"cake","price":12.5,"quantity":0}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Chocolate Cake", svc.lastCreate.Name)
	assert.Equal(t, domain.CategoryCake, svc.lastCreate.Category)
	assert.Equal(t, 0, svc.lastCreate.Quantity)

	var resp sweetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "s1", resp.Sweet.ID)
}

func TestSweetHandler_Create_Validation(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{}
	h := NewSweetHandler(svc)

	c, _ := newContext(e, http.MethodPost, "/api/sweets",
		`{"name":"","category":"bread","price":0,"quantity":-1}`)
	fields := validationFields(t, h.Create(c))

	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "category must be one of: cake, candy, cookie, pie, other", fields["category"])
	assert.Equal(t, "price must be greater than 0", fields["price"])
	assert.Equal(t, "quantity must be at least 0", fields["quantity"])
	assert.Zero(t, svc.calls)

	c, _ = newContext(e, http.MethodPost, "/api/sweets", `{"name":"Toffee","category":"candy","price":1}`)
	fields = validationFields(t, h.Create(c))
	assert.Equal(t, "quantity is required", fields["quantity"])

	c, _ = newContext(e, http.MethodPost, "/api/sweets", `{"name":"Toffee","category":"candy","price":1,"quantity":1.5}`)
	assert.Equal(t, errInvalidPayload, h.Create(c))
	assert.Zero(t, svc.calls)
}

func TestSweetHandler_List(t *testing.T) {
	e := newEcho()
	h := NewSweetHandler(&stubSweetService{sweets: []*domain.Sweet{cake()}})

	c, rec := newContext(e, http.MethodGet, "/api/sweets", "")
	require.NoError(t, h.List(c))

	var resp sweetListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Len(t, resp.Sweets, 1)

	h = NewSweetHandler(&stubSweetService{err: domain.ErrNoSweets})
	c, _ = newContext(e, http.MethodGet, "/api/sweets", "")
	assert.ErrorIs(t, h.List(c), domain.ErrNoSweets)
}

func TestSweetHandler_Search(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{sweets: []*domain.Sweet{cake()}}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodGet, "/api/sweets/search?name=choc&category=cake&minPrice=6&maxPrice=", "")
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "choc", svc.lastFilter.Name)
	assert.Equal(t, domain.CategoryCake, svc.lastFilter.Category)
	require.NotNil(t, svc.lastFilter.MinPrice)
	assert.Equal(t, 6.0, *svc.lastFilter.MinPrice)
	assert.Nil(t, svc.lastFilter.MaxPrice)
}

func TestSweetHandler_Search_Rejects(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{}
	h := NewSweetHandler(svc)

	cases := map[string]string{
		"/api/sweets/search?minPrice=abc":    "minPrice",
		"/api/sweets/search?maxPrice=-1":     "maxPrice",
		"/api/sweets/search?category=bread":  "category",
		"/api/sweets/search?minPrice=1e&x=1": "minPrice",
	}
	for target, field := range cases {
		c, _ := newContext(e, http.MethodGet, target, "")
		fields := validationFields(t, h.Search(c))
		assert.Contains(t, fields, field, target)
	}
	assert.Zero(t, svc.calls)
}

func TestSweetHandler_Get(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{sweet: cake()}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodGet, "/api/sweets/s1", "")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, "s1", svc.lastID)
	assert.Contains(t, rec.Body.String(), `"name":"Chocolate Cake"`)
}

func TestSweetHandler_Update(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{sweet: cake()}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodPut, "/api/sweets/s1", `{"name":" Dark Cake ","price":14}`)
	c.SetParamNames("id")
	c.SetParamValues("s1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.Name)
	assert.Equal(t, "Dark Cake", *svc.lastUpdate.Name)
	assert.Equal(t, 14.0, *svc.lastUpdate.Price)
	assert.Nil(t, svc.lastUpdate.Category)
	assert.False(t, svc.lastUpdate.QuantitySet)
}

func TestSweetHandler_Update_QuantityFlagged(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{err: domain.ErrQuantityNotUpdatable}
	h := NewSweetHandler(svc)

	for _, body := range []string{`{"quantity":5}`, `{"name":"x","quantity":null}`} {
		c, _ := newContext(e, http.MethodPut, "/api/sweets/s1", body)
		c.SetParamNames("id")
		c.SetParamValues("s1")
		assert.ErrorIs(t, h.Update(c), domain.ErrQuantityNotUpdatable)
		assert.True(t, svc.lastUpdate.QuantitySet, body)
	}
}

func TestSweetHandler_Update_Validation(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{}
	h := NewSweetHandler(svc)

	c, _ := newContext(e, http.MethodPut, "/api/sweets/s1", `{"name":"  ","category":"bread","price":-2}`)
	fields := validationFields(t, h.Update(c))
	assert.Len(t, fields, 3)
	assert.Zero(t, svc.calls)
}

func TestSweetHandler_Delete(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodDelete, "/api/sweets/s1", "")
	c.SetParamNames("id")
	c.SetParamValues("s1")
	require.NoError(t, h.Delete(c))
	assert.JSONEq(t, `{"success":true,"message":"Sweet deleted successfully"}`, rec.Body.String())

	svc.err = domain.ErrSweetNotFound
	c, _ = newContext(e, http.MethodDelete, "/api/sweets/s1", "")
	assert.ErrorIs(t, h.Delete(c), domain.ErrSweetNotFound)
}

func TestSweetHandler_Purchase(t *testing.T) {
	e := newEcho()
	left := cake()
	left.Quantity = 8
	svc := &stubSweetService{sweet: left}
	h := NewSweetHandler(svc)

	c, rec := newContext(e, http.MethodPost, "/api/sweets/s1/purchase", `{"quantity":2}`)
	c.SetParamNames("id")
	c.SetParamValues("s1")
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, 2, svc.lastQty)
	assert.Contains(t, rec.Body.String(), `"quantity":8`)

	for _, body := range []string{`{"quantity":0}`, `{}`, `{"quantity":-3}`} {
		c, _ = newContext(e, http.MethodPost, "/api/sweets/s1/purchase", body)
		validationFields(t, h.Purchase(c))
	}

	svc.err = domain.ErrInsufficientStock
	c, _ = newContext(e, http.MethodPost, "/api/sweets/s1/purchase", `{"quantity":99}`)
	assert.ErrorIs(t, h.Purchase(c), domain.ErrInsufficientStock)
}

func TestSweetHandler_Restock(t *testing.T) {
	e := newEcho()
	svc := &stubSweetService{sweet: cake()}
	h := NewSweetHandler(svc)

	c, _ := newContext(e, http.MethodPost, "/api/sweets/s1/restock", `{"quantity":0}`)
	c.SetParamNames("id")
	c.SetParamValues("s1")
	require.NoError(t, h.Restock(c))
	assert.Equal(t, 0, svc.lastQty)

	c, _ = newContext(e, http.MethodPost, "/api/sweets/s1/restock", `{"quantity":-1}`)
	fields := validationFields(t, h.Restock(c))
	assert.Equal(t, "quantity must be at least 0", fields["quantity"])
}
