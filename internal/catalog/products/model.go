package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRef is the embedded category projection on a product.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog item. Stock is the single shared mutable hot spot in
// the system; all writers go through conditional updates.
type Product struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Price                decimal.Decimal  `json:"price"`
	Stock                int              `json:"stock"`
	CategoryID           int64            `json:"categoryId"`
	Category             *CategoryRef     `json:"category,omitempty"`
	ImageURL             string           `json:"image,omitempty"`
	ImagePublicID        string           `json:"imagePublicId,omitempty"`
	Weight               *decimal.Decimal `json:"weight,omitempty"`
	Origin               *string          `json:"origin,omitempty"`
	Featured             bool             `json:"featured"`
	Active               bool             `json:"active"`
	WeekendOfferEligible bool             `json:"isWeekendOfferEligible"`
	WeekendOffer         bool             `json:"isWeekendOffer"`
	Sustainable          bool             `json:"isSustainable"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}
