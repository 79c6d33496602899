package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-api/internal/api/metrics"
	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

// SweetHandler handles HTTP requests for catalog operations. Role checks run
// in route middleware before any method here.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// Create handles POST /sweets.
//
// @Summary      Add a sweet to the catalog
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Sweet details"
// @Success      201   {object}  sweetResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.service.Create(c.Request().Context(), ports.CreateSweetInput{
		Name:     req.Name,
		Category: domain.Category(req.Category),
		Price:    *req.Price,
		Quantity: *req.Quantity,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sweetResponse{Success: true, Message: "Sweet created successfully", Sweet: sweet})
}

// List handles GET /sweets.
//
// @Summary      List all sweets
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sweetListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse  "catalog is empty"
// @Router       /sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetListResponse{Success: true, Count: len(sweets), Sweets: sweets})
}

// Search handles GET /sweets/search.
//
// @Summary      Search sweets
// @Description  All filters are optional and combined with AND. Name matches case-insensitively as a substring.
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        name      query     string  false  "Name substring"
// @Param        category  query     string  false  "Category"  Enums(cake, candy, cookie, pie, other)
// @Param        minPrice  query     number  false  "Minimum price, inclusive"
// @Param        maxPrice  query     number  false  "Maximum price, inclusive"
// @Success      200       {object}  sweetListResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse  "no sweet matched"
// @Router       /sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	req, err := bindSearch(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweets, err := h.service.Search(c.Request().Context(), ports.SweetFilter{
		Name:     req.Name,
		Category: domain.Category(req.Category),
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetListResponse{Success: true, Count: len(sweets), Sweets: sweets})
}

// bindSearch reads the search query. Blank parameters count as absent.
func bindSearch(c echo.Context) (searchSweetsRequest, error) {
	var (
		req                searchSweetsRequest
		minPrice, maxPrice float64
	)
	err := echo.QueryParamsBinder(c).
		String("name", &req.Name).
		String("category", &req.Category).
		Float64("minPrice", &minPrice).
		Float64("maxPrice", &maxPrice).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) {
			return req, domain.NewValidationError(be.Field, be.Field+" must be a number")
		}
		return req, errInvalidPayload
	}

	req.Name = strings.TrimSpace(req.Name)
	if c.QueryParam("minPrice") != "" {
		req.MinPrice = &minPrice
	}
	if c.QueryParam("maxPrice") != "" {
		req.MaxPrice = &maxPrice
	}
	return req, nil
}

// Get handles GET /sweets/:id.
//
// @Summary      Get a sweet by id
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  sweetResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetResponse{Success: true, Sweet: sweet})
}

// Update handles PUT /sweets/:id. Quantity cannot be changed here.
//
// @Summary      Update a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.UpdateSweetInput{
		SweetChanges: ports.SweetChanges{Name: req.Name, Price: req.Price},
		QuantitySet:  len(req.Quantity) > 0,
	}
	if req.Category != nil {
		cat := domain.Category(*req.Category)
		in.Category = &cat
	}

	sweet, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetResponse{Success: true, Message: "Sweet updated successfully", Sweet: sweet})
}

// Delete handles DELETE /sweets/:id.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Sweet deleted successfully"})
}

// Purchase handles POST /sweets/:id/purchase.
//
// @Summary      Purchase a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Sweet id"
// @Param        body  body      purchaseRequest  true  "Units to buy"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  ErrorResponse  "invalid quantity or insufficient stock"
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		metrics.PurchasesRejectedTotal.WithLabelValues("invalid_quantity").Inc()
		return err
	}

	sweet, err := h.service.Purchase(c.Request().Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			metrics.PurchasesRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, domain.ErrSweetNotFound):
			metrics.PurchasesRejectedTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}

	metrics.SweetsPurchasedTotal.WithLabelValues(string(sweet.Category)).Add(float64(*req.Quantity))
	return c.JSON(http.StatusOK, sweetResponse{Success: true, Message: "Purchase successful", Sweet: sweet})
}

// Restock handles POST /sweets/:id/restock.
//
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Sweet id"
// @Param        body  body      restockRequest  true  "Units to add"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.service.Restock(c.Request().Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}

	metrics.SweetsRestockedTotal.WithLabelValues(string(sweet.Category)).Add(float64(*req.Quantity))
	return c.JSON(http.StatusOK, sweetResponse{Success: true, Message: "Sweet restocked successfully", Sweet: sweet})
}
