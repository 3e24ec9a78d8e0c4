package httpx

import (
	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

// resolveSelection checks a requested selection against the product's options.
// For variant products the variant id is required and fills in an unset color
// or size; free-form values are opaque and pass through.
func resolveSelection(p cart.Product, sel cart.Selection) (cart.Selection, error) {
	switch opts := p.Options.(type) {
	case cart.VariantOptions:
		if len(opts.Variants) == 0 {
			break
		}
		if sel.VariantID == "" {
			return sel, invalidSelection("variant_id", "is required for this product")
		}
		v, ok := p.Variant(sel.VariantID)
		if !ok {
			return sel, invalidSelection("variant_id", "is not a variant of this product")
		}
		if sel.Color == "" {
			sel.Color = v.Color
		}
		if sel.Size == "" {
			sel.Size = v.Size
		}
		if sel.Color != v.Color {
			return sel, invalidSelection("color", "does not match the variant")
		}
		if sel.Size != v.Size {
			return sel, invalidSelection("size", "does not match the variant")
		}
		return sel, nil
	case cart.FreeformOptions:
		if sel.VariantID != "" {
			return sel, invalidSelection("variant_id", "product has no variants")
		}
		return sel, nil
	}
	if sel != (cart.Selection{}) {
		return sel, invalidSelection("selection", "product has no options")
	}
	return sel, nil
}

func invalidSelection(field, msg string) error {
	return apperr.New(apperr.CodeValidation, "invalid selection").WithDetails(map[string]string{field: msg})
}
