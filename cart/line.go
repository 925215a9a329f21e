// Package cart holds a user's finalized cart lines and keeps them persisted
// in local durable storage.
package cart

import (
	"time"

	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/storefront"
)

// ColorSelection is the color chosen for a line.
type ColorSelection struct {
	ID      string `json:"id" dynamodbav:"id"`
	Name    string `json:"name" dynamodbav:"name"`
	Hex     string `json:"hex,omitempty" dynamodbav:"hex,omitempty"`
	Bicolor string `json:"bicolor,omitempty" dynamodbav:"bicolor,omitempty"`
	Image   string `json:"image,omitempty" dynamodbav:"image,omitempty"`
}

// SizeSelection is the stem size chosen for a line.
type SizeSelection struct {
	ID              string  `json:"id" dynamodbav:"id"`
	Label           string  `json:"label" dynamodbav:"label"`
	LengthCm        int     `json:"value,omitempty" dynamodbav:"value,omitempty"`
	PriceMultiplier float64 `json:"priceMultiplier,omitempty" dynamodbav:"priceMultiplier,omitempty"`
}

// SelectColor snapshots a catalog color for a cart line.
func SelectColor(c catalog.FlowerColor) *ColorSelection {
	return &ColorSelection{
		ID:      c.ID,
		Name:    c.Name,
		Hex:     c.Hex,
		Bicolor: c.Bicolor,
		Image:   catalog.ColorImage(c),
	}
}

// SelectSize snapshots a catalog stem size for a cart line.
func SelectSize(s catalog.StemSize) *SizeSelection {
	return &SizeSelection{
		ID:              s.ID,
		Label:           s.Label,
		LengthCm:        s.LengthCm,
		PriceMultiplier: s.PriceMultiplier,
	}
}

// Line is one finalized cart entry. Color is nil for products without color
// variants. Size is nil only for lines restored from old snapshots.
type Line struct {
	ID           string          `json:"id" dynamodbav:"id"`
	ProductID    string          `json:"productId" dynamodbav:"productId"`
	Name         string          `json:"name" dynamodbav:"name"`
	Type         string          `json:"type" dynamodbav:"type"`
	Color        *ColorSelection `json:"selectedColor,omitempty" dynamodbav:"selectedColor,omitempty"`
	Size         *SizeSelection  `json:"selectedSize,omitempty" dynamodbav:"selectedSize,omitempty"`
	Quantity     int             `json:"quantity" dynamodbav:"quantity"`
	RequiredDate time.Time       `json:"requiredDate" dynamodbav:"requiredDate"`
	DisplayImage string          `json:"displayImage,omitempty" dynamodbav:"displayImage,omitempty"`
}

// ColorID returns the selected color id, or "".
func (l Line) ColorID() string {
	if l.Color == nil {
		return ""
	}
	return l.Color.ID
}

// SizeID returns the selected size id, or "".
func (l Line) SizeID() string {
	if l.Size == nil {
		return ""
	}
	return l.Size.ID
}

// Key is the identity used for replace-on-re-add: product, color and size.
func (l Line) Key() string {
	return storefront.LineKey(l.ProductID, l.ColorID(), l.SizeID())
}

// Clone returns a deep copy so callers cannot alias stored selections.
func (l Line) Clone() Line {
	if l.Color != nil {
		c := *l.Color
		l.Color = &c
	}
	if l.Size != nil {
		s := *l.Size
		l.Size = &s
	}
	return l
}

func (l *Line) assignID() {
	l.ID = storefront.LineID(l.ProductID, l.ColorID(), l.SizeID()).String()
}
