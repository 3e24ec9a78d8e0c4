package cart

type ProductType string

const (
	TypeTShirt   ProductType = "tshirt"
	TypeHoodie   ProductType = "hoodie"
	TypeCap      ProductType = "cap"
	TypePoster   ProductType = "poster"
	TypeKeychain ProductType = "keychain"
	TypeMug      ProductType = "mug"
	TypeSticker  ProductType = "sticker"
	TypeOther    ProductType = "other"
)

var productTypes = []ProductType{TypeTShirt, TypeHoodie, TypeCap, TypePoster, TypeKeychain, TypeMug, TypeSticker, TypeOther}

// ProductTypes lists the known categories in display order.
func ProductTypes() []ProductType {
	return append([]ProductType(nil), productTypes...)
}

func (t ProductType) Valid() bool {
	for _, known := range productTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Variant struct {
	ID    string `json:"id"`
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	SKU   string `json:"sku"`
}

// Options describes how a product exposes its selectable configurations.
// It is either VariantOptions or FreeformOptions.
type Options interface {
	optionsKind() string
}

// VariantOptions is a product with structured, SKU-bearing variants.
type VariantOptions struct {
	Variants []Variant `json:"variants"`
}

// FreeformOptions is a product whose colors and sizes are raw catalog strings.
// The cart never interprets them.
type FreeformOptions struct {
	Colors string `json:"colors,omitempty"`
	Sizes  string `json:"sizes,omitempty"`
}

func (VariantOptions) optionsKind() string  { return "variants" }
func (FreeformOptions) optionsKind() string { return "freeform" }

// Product is owned by the catalog. The cart keeps a copy for display only.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Options     Options     `json:"-"`
}

func (p Product) HasVariants() bool {
	vo, ok := p.Options.(VariantOptions)
	return ok && len(vo.Variants) > 0
}

// Variant looks up a structured variant by id.
func (p Product) Variant(id string) (Variant, bool) {
	vo, ok := p.Options.(VariantOptions)
	if !ok || id == "" {
		return Variant{}, false
	}
	for _, v := range vo.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// SKUFor returns the SKU of the given variant, or "" for free-form products
// and unknown ids.
func (p Product) SKUFor(variantID string) string {
	switch p.Options.(type) {
	case VariantOptions:
		if v, ok := p.Variant(variantID); ok {
			return v.SKU
		}
		return ""
	default:
		return ""
	}
}
