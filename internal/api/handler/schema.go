package handler

import (
	"encoding/json"
	"strings"

	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50" example:"Ada"`
	LastName  string `json:"lastName" validate:"required,max=50" example:"Lovelace"`
	Email     string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password  string `json:"password" validate:"required,min=6,max=72" example:"secret1"`
}

func (r *registerRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = domain.NormalizeEmail(r.Email)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required" example:"secret1"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type meResponse struct {
	Success bool     `json:"success"`
	User    identity `json:"user"`
}

// --- Sweets ---

type createSweetRequest struct {
	Name     string   `json:"name" validate:"required,max=100" example:"Chocolate Cake"`
	Category string   `json:"category" validate:"required,oneof=cake candy cookie pie other" example:"cake"`
	Price    *float64 `json:"price" validate:"required,gt=0" example:"12.5"`
	Quantity *int     `json:"quantity" validate:"required,gte=0" example:"10"`
}

// updateSweetRequest keeps quantity as raw JSON so its mere presence can be
// detected and rejected.
type updateSweetRequest struct {
	Name     *string         `json:"name" validate:"omitnil,min=1,max=100" example:"Dark Chocolate Cake"`
	Category *string         `json:"category" validate:"omitnil,oneof=cake candy cookie pie other" example:"cake"`
	Price    *float64        `json:"price" validate:"omitnil,gt=0" example:"14"`
	Quantity json.RawMessage `json:"quantity,omitempty" swaggerignore:"true"`
}

type searchSweetsRequest struct {
	Name     string   `query:"name" validate:"max=100"`
	Category string   `query:"category" validate:"omitempty,oneof=cake candy cookie pie other"`
	MinPrice *float64 `query:"minPrice" validate:"omitnil,gte=0"`
	MaxPrice *float64 `query:"maxPrice" validate:"omitnil,gte=0"`
}

type purchaseRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=1" example:"2"`
}

type restockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0" example:"20"`
}

type sweetResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Sweet   *domain.Sweet `json:"sweet"`
}

type sweetListResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Sweets  []*domain.Sweet `json:"sweets"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}
