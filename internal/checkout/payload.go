package checkout

import (
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

const defaultAuthor = "Unspecified author"

// ProductRow is one product entry in the webhook payload.
type ProductRow struct {
	Name     string `json:"name"`
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku"`
}

// Payload is the JSON body the spreadsheet webhook expects. Field names are
// fixed by the sheet script.
type Payload struct {
	Timestamp   string       `json:"timestamp"`
	OrderID     string       `json:"orderId,omitempty"`
	Products    []ProductRow `json:"products"`
	TotalItems  int          `json:"totalItems"`
	AuthorName  string       `json:"authorName"`
	Email       string       `json:"email"`
	MangaTitle  string       `json:"mangaTitle"`
	PostalCode  string       `json:"postalCode"`
	Address     string       `json:"address"`
	PhoneNumber string       `json:"phoneNumber"`
	Notes       string       `json:"notes"`
}

func BuildPayload(orderID string, form Form, lines []cart.Line, now time.Time) Payload {
	p := Payload{
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
		OrderID:     orderID,
		Products:    make([]ProductRow, 0, len(lines)),
		AuthorName:  form.AuthorName,
		Email:       form.Email,
		MangaTitle:  form.Title,
		PostalCode:  form.PostalCode,
		Address:     form.Address,
		PhoneNumber: form.PhoneNumber,
		Notes:       form.Notes,
	}
	if p.AuthorName == "" {
		p.AuthorName = defaultAuthor
	}
	for _, l := range lines {
		p.Products = append(p.Products, ProductRow{
			Name:     l.Product.Name,
			Variant:  variantText(l.Color, l.Size),
			Quantity: l.Quantity,
			SKU:      l.SKU(),
		})
		p.TotalItems += l.Quantity
	}
	return p
}

// variantText is "color/size", with the slash only when both are set.
func variantText(color, size string) string {
	switch {
	case color != "" && size != "":
		return color + "/" + size
	case color != "":
		return color
	default:
		return size
	}
}
