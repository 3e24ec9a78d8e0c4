package checkout

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

var csvHeader = []string{"Author", "Email", "Title", "PostalCode", "Address", "Phone", "Notes", "Products"}

// FormatCSV renders the order as a header plus one data row; all products share
// the last column, separated by "; ".
func FormatCSV(form Form, lines []cart.Line) (string, error) {
	products := make([]string, 0, len(lines))
	for _, l := range lines {
		info := l.Product.Name
		if v := variantText(l.Color, l.Size); v != "" {
			info += " (" + v + ")"
		}
		products = append(products, fmt.Sprintf("%s - %dx [SKU: %s]", info, l.Quantity, l.SKU()))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		csvHeader,
		{form.AuthorName, form.Email, form.Title, form.PostalCode, form.Address, form.PhoneNumber, form.Notes, strings.Join(products, "; ")},
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return buf.String(), nil
}
