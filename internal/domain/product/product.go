package product

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSellerNotFound  = errors.New("seller not found")
)

type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is immutable catalog reference data. Prices are per kilogram.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Image             string           `json:"image"`
	PricePerKg        decimal.Decimal  `json:"price_per_kg"`
	TransportIncluded bool             `json:"transport_included"`
	TransporterName   Optional[string] `json:"transporter_name"`
	Description       string           `json:"description"`
	Premium           Optional[bool]   `json:"is_premium"`
	Organic           Optional[bool]   `json:"is_organic"`
	ProductOfYear     Optional[bool]   `json:"is_product_of_year"`
	Seller            Seller           `json:"seller"`
}

// IsPremium reports whether the premium flag is present and set.
func (p Product) IsPremium() bool {
	return p.Premium.OrElse(false)
}
