package models

import (
	"strings"
	"time"
)

// Product is the resource served under /products.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`
	Owner     string    `json:"owner" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID identifies the product owner.
func (p *Product) OwnedBy(userID string) bool {
	owner := NormalizeID(p.Owner)
	return owner != "" && owner == NormalizeID(userID)
}

// ProductPatch carries a partial update. Nil and empty fields mean "no change".
type ProductPatch struct {
	Title *string
	Text  *string
}

// Normalize drops fields that must not be applied.
func (p ProductPatch) Normalize() ProductPatch {
	out := ProductPatch{}
	if p.Title != nil && *p.Title != "" {
		title := *p.Title
		out.Title = &title
	}
	if p.Text != nil && *p.Text != "" {
		text := *p.Text
		out.Text = &text
	}
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Text == nil
}

// Apply merges the patch into the product in place.
func (p ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Text != nil {
		product.Text = *p.Text
	}
}

// NormalizeID returns the canonical string form of an identifier. Mongo
// ObjectIDs are hex and compare case-insensitively; numeric ids are unchanged.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
