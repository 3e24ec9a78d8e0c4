package catalog

import (
	"context"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

// Static serves a fixed product list.
type Static struct {
	products []cart.Product
}

func NewStatic(products []cart.Product) *Static {
	return &Static{products: products}
}

// Seed is the built-in sample catalog.
func Seed() *Static { return NewStatic(seedProducts()) }

func (s *Static) List(context.Context) ([]cart.Product, error) {
	out := make([]cart.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Static) Get(ctx context.Context, id string) (cart.Product, error) {
	return find(ctx, s, id)
}

func seedProducts() []cart.Product {
	return []cart.Product{
		{
			ID: "1", Name: "Character T-shirt", Type: cart.TypeTShirt,
			Description: "T-shirt featuring the series' lead characters", Image: "/placeholder.svg",
			Options: cart.VariantOptions{Variants: []cart.Variant{
				{ID: "1-1", Color: "White", Size: "S", SKU: "TS-WH-S"},
				{ID: "1-2", Color: "White", Size: "M", SKU: "TS-WH-M"},
				{ID: "1-3", Color: "White", Size: "L", SKU: "TS-WH-L"},
				{ID: "1-4", Color: "Black", Size: "S", SKU: "TS-BL-S"},
				{ID: "1-5", Color: "Black", Size: "M", SKU: "TS-BL-M"},
				{ID: "1-6", Color: "Black", Size: "L", SKU: "TS-BL-L"},
			}},
		},
		{
			ID: "2", Name: "Logo Hoodie", Type: cart.TypeHoodie,
			Description: "Hoodie with the title logo", Image: "/placeholder.svg",
			Options: cart.VariantOptions{Variants: []cart.Variant{
				{ID: "2-1", Color: "Gray", Size: "M", SKU: "HD-GY-M"},
				{ID: "2-2", Color: "Gray", Size: "L", SKU: "HD-GY-L"},
				{ID: "2-3", Color: "Black", Size: "M", SKU: "HD-BL-M"},
				{ID: "2-4", Color: "Black", Size: "L", SKU: "HD-BL-L"},
			}},
		},
		{
			ID: "3", Name: "Character Cap", Type: cart.TypeCap,
			Description: "Cap with an embroidered character", Image: "/placeholder.svg",
			Options: cart.VariantOptions{Variants: []cart.Variant{
				{ID: "3-1", Color: "Navy", SKU: "CP-NV"},
				{ID: "3-2", Color: "Black", SKU: "CP-BL"},
			}},
		},
		{
			ID: "4", Name: "Key Visual Poster", Type: cart.TypePoster,
			Description: "Poster of the volume one key visual", Image: "/placeholder.svg",
			Options: cart.VariantOptions{Variants: []cart.Variant{
				{ID: "4-1", Size: "B2", SKU: "PS-B2"},
				{ID: "4-2", Size: "A3", SKU: "PS-A3"},
			}},
		},
		{
			ID: "5", Name: "Acrylic Keychain", Type: cart.TypeKeychain,
			Description: "Acrylic keychain of the main cast", Image: "/placeholder.svg",
			Options: cart.FreeformOptions{Colors: "Clear, Glitter"},
		},
		{
			ID: "6", Name: "Mug", Type: cart.TypeMug,
			Description: "Ceramic mug with chapter art", Image: "/placeholder.svg",
			Options: cart.VariantOptions{Variants: []cart.Variant{
				{ID: "6-1", SKU: "MG-01"},
			}},
		},
		{
			ID: "7", Name: "Sticker Set", Type: cart.TypeSticker,
			Description: "Set of five die-cut stickers", Image: "/placeholder.svg",
		},
	}
}
