package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-api/internal/api/middleware"
	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) EnsureAdmin(context.Context, string, string) (*domain.User, bool, error) {
	return nil, false, nil
}

// stubSweetService records the last call and returns canned values.
type stubSweetService struct {
	sweet  *domain.Sweet
	sweets []*domain.Sweet
	err    error

	calls      int
	lastID     string
	lastQty    int
	lastCreate ports.CreateSweetInput
	lastUpdate ports.UpdateSweetInput
	lastFilter ports.SweetFilter
}

func (s *stubSweetService) Create(_ context.Context, in ports.CreateSweetInput) (*domain.Sweet, error) {
	s.calls++
	s.lastCreate = in
	return s.sweet, s.err
}

func (s *stubSweetService) List(context.Context) ([]*domain.Sweet, error) {
	s.calls++
	return s.sweets, s.err
}

func (s *stubSweetService) Search(_ context.Context, f ports.SweetFilter) ([]*domain.Sweet, error) {
	s.calls++
	s.lastFilter = f
	return s.sweets, s.err
}

func (s *stubSweetService) Get(_ context.Context, id string) (*domain.Sweet, error) {
	s.calls++
	s.lastID = id
	return s.sweet, s.err
}

func (s *stubSweetService) Update(_ context.Context, id string, in ports.UpdateSweetInput) (*domain.Sweet, error) {
	s.calls++
	s.lastID = id
	s.lastUpdate = in
	return s.sweet, s.err
}

func (s *stubSweetService) Delete(_ context.Context, id string) error {
	s.calls++
	s.lastID = id
	return s.err
}

func (s *stubSweetService) Purchase(_ context.Context, id string, qty int) (*domain.Sweet, error) {
	s.calls++
	s.lastID, s.lastQty = id, qty
	return s.sweet, s.err
}

func (s *stubSweetService) Restock(_ context.Context, id string, qty int) (*domain.Sweet, error) {
	s.calls++
	s.lastID, s.lastQty = id, qty
	return s.sweet, s.err
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newContext builds a request context. An empty body sends no payload.
func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(c echo.Context, id, email, role string) {
	c.Set(middleware.ContextUserID, id)
	c.Set(middleware.ContextEmail, email)
	c.Set(middleware.ContextRole, role)
}
