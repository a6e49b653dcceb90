package products

import "github.com/shopspring/decimal"

// ListRequest carries catalog listing filters. IncludeInactive is only ever
// set by the admin listing path; public queries always see active products.
type ListRequest struct {
	Page            int
	Limit           int
	CategoryID      *int64
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	Featured        *bool
	WeekendOffer    *bool
	Sustainable     *bool
	IncludeInactive bool
	ActiveFilter    *bool
	SortBy          string
	SortOrder       string
}

type CreateProductRequest struct {
	Name                 string           `json:"name" validate:"required,min=2"`
	Description          string           `json:"description" validate:"required,min=10"`
	Price                decimal.Decimal  `json:"price" validate:"required"`
	Stock                int              `json:"stock" validate:"gte=0"`
	CategoryID           int64            `json:"categoryId" validate:"required,gt=0"`
	Image                string           `json:"image"`
	ImagePublicID        string           `json:"imagePublicId"`
	Weight               *decimal.Decimal `json:"weight,omitempty"`
	Origin               *string          `json:"origin,omitempty"`
	Featured             bool             `json:"featured"`
	Active               bool             `json:"active"`
	WeekendOfferEligible bool             `json:"isWeekendOfferEligible"`
	Sustainable          bool             `json:"isSustainable"`
}

type UpdateProductRequest = CreateProductRequest
