package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
)

var ErrNotFound = errors.New("product not found")

type Provider interface {
	List(ctx context.Context) ([]cart.Product, error)
	Get(ctx context.Context, id string) (cart.Product, error)
}

// find is the Get implementation shared by providers that only know how to list.
func find(ctx context.Context, p Provider, id string) (cart.Product, error) {
	products, err := p.List(ctx)
	if err != nil {
		return cart.Product{}, err
	}
	for _, pr := range products {
		if pr.ID == id {
			return pr, nil
		}
	}
	return cart.Product{}, ErrNotFound
}
