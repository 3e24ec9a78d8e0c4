package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

const placeholderImage = "/placeholder.svg"

// Remote reads the product sheet published by the spreadsheet endpoint.
// An empty URL means no remote catalog is configured and List returns nothing.
type Remote struct {
	URL    string
	Client *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{URL: url, Client: &http.Client{Timeout: timeout}}
}

type sheetRecord struct {
	ID          any            `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Variants    []cart.Variant `json:"variants"`
	Colors      any            `json:"colors"`
	Sizes       any            `json:"sizes"`
}

func (r *Remote) List(ctx context.Context) ([]cart.Product, error) {
	if strings.TrimSpace(r.URL) == "" {
		return []cart.Product{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Products *[]sheetRecord `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if body.Products == nil {
		return nil, fmt.Errorf("decode catalog: missing products array")
	}

	out := make([]cart.Product, 0, len(*body.Products))
	for i, rec := range *body.Products {
		out = append(out, rec.toProduct(i))
	}
	return out, nil
}

func (r *Remote) Get(ctx context.Context, id string) (cart.Product, error) {
	return find(ctx, r, id)
}

// toProduct fills the gaps a hand-edited sheet leaves: index ids, numbered
// names and the placeholder image. Colors and sizes stay raw.
func (rec sheetRecord) toProduct(index int) cart.Product {
	id := scalar(rec.ID)
	if id == "" {
		id = strconv.Itoa(index)
	}
	name := rec.Name
	if name == "" {
		name = fmt.Sprintf("Product %d", index+1)
	}
	image := rec.Image
	if image == "" {
		image = placeholderImage
	}
	typ := cart.ProductType(rec.Type)
	if typ == "" {
		typ = cart.TypeOther
	}

	p := cart.Product{ID: id, Name: name, Type: typ, Description: rec.Description, Image: image}
	colors, sizes := scalar(rec.Colors), scalar(rec.Sizes)
	switch {
	case len(rec.Variants) > 0:
		p.Options = cart.VariantOptions{Variants: rec.Variants}
	case colors != "" || sizes != "":
		p.Options = cart.FreeformOptions{Colors: colors, Sizes: sizes}
	}
	return p
}

// scalar renders the loosely typed cells a sheet produces (numbers, strings) as text.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
