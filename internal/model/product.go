package model

import (
	"encoding/json"
	"time"
)

// Product represents a catalogue entry.
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Available bool      `json:"available" db:"available"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt,omitzero" db:"created_at"`
}

// UnmarshalJSON decodes a product, treating a missing "active" field as true.
// Records written before soft delete existed carry no active flag.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	decoded := plain{Active: true}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Product(decoded)
	return nil
}

// IsPublic reports whether the product may appear in the public listing.
func (p *Product) IsPublic() bool {
	return p.Active && p.Available
}

// ProductInput represents the request payload for creating a product.
type ProductInput struct {
	ID        *int64  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Available bool    `json:"available"`
	ImageURL  string  `json:"imageUrl"`
	Active    *bool   `json:"active,omitempty"`
}

// ProductPatch represents a partial update. Nil fields are left unchanged.
// The id and creation time of a product can never be patched.
type ProductPatch struct {
	Name      *string  `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Available *bool    `json:"available,omitempty"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
	Active    *bool    `json:"active,omitempty"`
}

// Apply merges the patch into p.
func (patch *ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
}

// ImportResponse is returned after a full catalogue replacement.
type ImportResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}
