package promo

import (
	"strings"

	"printsociety/internal/model"
)

// Catalog is an in-memory promo code table keyed by normalised code. It is read-only once loaded.
type Catalog struct {
	codes map[string]model.PromoCode
}

// NewCatalog creates a catalog holding codes. Later entries replace earlier ones with the same code.
func NewCatalog(codes ...model.PromoCode) *Catalog {
	c := &Catalog{codes: make(map[string]model.PromoCode, len(codes))}
	for _, p := range codes {
		c.Add(p)
	}
	return c
}

// Add stores p under its normalised code.
func (c *Catalog) Add(p model.PromoCode) {
	p.Code = normalise(p.Code)
	c.codes[p.Code] = p
}

// Lookup finds a code, ignoring case and surrounding space.
func (c *Catalog) Lookup(code string) (model.PromoCode, bool) {
	p, ok := c.codes[normalise(code)]
	return p, ok
}

// Size returns the number of codes.
func (c *Catalog) Size() int {
	return len(c.codes)
}

// Merge copies every code of other into c, replacing duplicates.
func (c *Catalog) Merge(other *Catalog) {
	for _, p := range other.codes {
		c.codes[p.Code] = p
	}
}

func normalise(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
