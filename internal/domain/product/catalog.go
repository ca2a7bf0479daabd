package product

import (
	"slices"
	"strings"
)

// Catalog is a read-only, ordered list of products.
type Catalog struct {
	products []Product
	byID     map[string]int
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// List returns every product in catalog order.
func (c *Catalog) List() []Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Get(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Search returns products whose name contains query, case-insensitively.
// A blank query matches everything. Premium products come first; the relative
// order within each group is the catalog order.
func (c *Catalog) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			result = append(result, p)
		}
	}

	slices.SortStableFunc(result, func(a, b Product) int {
		switch {
		case a.IsPremium() && !b.IsPremium():
			return -1
		case !a.IsPremium() && b.IsPremium():
			return 1
		default:
			return 0
		}
	})
	return result
}

func (c *Catalog) Seller(id string) (Seller, error) {
	for _, p := range c.products {
		if p.Seller.ID == id {
			return p.Seller, nil
		}
	}
	return Seller{}, ErrSellerNotFound
}

func (c *Catalog) BySeller(sellerID string) []Product {
	var result []Product
	for _, p := range c.products {
		if p.Seller.ID == sellerID {
			result = append(result, p)
		}
	}
	return result
}
