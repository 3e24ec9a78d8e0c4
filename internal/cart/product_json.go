package cart

import "encoding/json"

type productWire struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type,omitempty"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Variants    []Variant   `json:"variants,omitempty"`
	Colors      string      `json:"colors,omitempty"`
	Sizes       string      `json:"sizes,omitempty"`
}

// MarshalJSON flattens Options into either a "variants" array or raw
// "colors"/"sizes" strings.
func (p Product) MarshalJSON() ([]byte, error) {
	w := productWire{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Image:       p.Image,
	}
	switch o := p.Options.(type) {
	case VariantOptions:
		w.Variants = o.Variants
	case FreeformOptions:
		w.Colors, w.Sizes = o.Colors, o.Sizes
	}
	return json.Marshal(w)
}

// UnmarshalJSON prefers structured variants when both shapes are present.
func (p *Product) UnmarshalJSON(b []byte) error {
	var w productWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Product{
		ID:          w.ID,
		Name:        w.Name,
		Type:        w.Type,
		Description: w.Description,
		Image:       w.Image,
	}
	switch {
	case len(w.Variants) > 0:
		p.Options = VariantOptions{Variants: w.Variants}
	case w.Colors != "" || w.Sizes != "":
		p.Options = FreeformOptions{Colors: w.Colors, Sizes: w.Sizes}
	}
	return nil
}
