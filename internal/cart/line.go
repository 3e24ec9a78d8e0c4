package cart

import "strings"

// Selection is the caller-resolved choice for a product. Empty fields are unset.
type Selection struct {
	VariantID string `json:"variant_id,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// Key identifies a line. Two requests hit the same line iff their keys are equal.
type Key struct {
	ProductID string
	VariantID string
	Color     string
	Size      string
}

func KeyOf(productID string, sel Selection) Key {
	return Key{
		ProductID: productID,
		VariantID: sel.VariantID,
		Color:     sel.Color,
		Size:      sel.Size,
	}
}

type Line struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, VariantID: l.VariantID, Color: l.Color, Size: l.Size}
}

func (l Line) Selection() Selection {
	return Selection{VariantID: l.VariantID, Color: l.Color, Size: l.Size}
}

// Label renders "Name (color / size)", omitting the parenthesis when neither is set.
func (l Line) Label() string {
	return Label(l.Product.Name, l.Color, l.Size)
}

func (l Line) SKU() string {
	return l.Product.SKUFor(l.VariantID)
}

func Label(name, color, size string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{color, size} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return name
	}
	return name + " (" + strings.Join(parts, " / ") + ")"
}
