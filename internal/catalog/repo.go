package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo reads the catalog from Postgres. A product with rows in product_variants
// is structured; otherwise its raw colors/sizes columns are used.
type Repo struct{ DB *pgxpool.Pool }

const catalogSchema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT 'other',
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '/placeholder.svg',
	colors      TEXT NOT NULL DEFAULT '',
	sizes       TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS product_variants (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	color      TEXT NOT NULL DEFAULT '',
	size       TEXT NOT NULL DEFAULT '',
	sku        TEXT NOT NULL
);`

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, catalogSchema)
	return err
}

func (r *Repo) List(ctx context.Context) ([]cart.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, type, description, image, colors, sizes
		FROM products ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Product
	raw := map[string]cart.FreeformOptions{}
	for rows.Next() {
		var p cart.Product
		var typ, colors, sizes string
		if err := rows.Scan(&p.ID, &p.Name, &typ, &p.Description, &p.Image, &colors, &sizes); err != nil {
			return nil, err
		}
		p.Type = cart.ProductType(typ)
		if colors != "" || sizes != "" {
			raw[p.ID] = cart.FreeformOptions{Colors: colors, Sizes: sizes}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	variants, err := r.variants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		id := out[i].ID
		if vs := variants[id]; len(vs) > 0 {
			out[i].Options = cart.VariantOptions{Variants: vs}
		} else if ff, ok := raw[id]; ok {
			out[i].Options = ff
		}
	}
	return out, nil
}

func (r *Repo) variants(ctx context.Context) (map[string][]cart.Variant, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, product_id, color, size, sku FROM product_variants ORDER BY product_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]cart.Variant{}
	for rows.Next() {
		var v cart.Variant
		var productID string
		if err := rows.Scan(&v.ID, &productID, &v.Color, &v.Size, &v.SKU); err != nil {
			return nil, err
		}
		out[productID] = append(out[productID], v)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (cart.Product, error) {
	var p cart.Product
	var typ, colors, sizes string
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, type, description, image, colors, sizes FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &typ, &p.Description, &p.Image, &colors, &sizes)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.Product{}, ErrNotFound
	}
	if err != nil {
		return cart.Product{}, err
	}
	p.Type = cart.ProductType(typ)

	rows, err := r.DB.Query(ctx, `SELECT id, color, size, sku FROM product_variants WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return cart.Product{}, err
	}
	defer rows.Close()
	var vs []cart.Variant
	for rows.Next() {
		var v cart.Variant
		if err := rows.Scan(&v.ID, &v.Color, &v.Size, &v.SKU); err != nil {
			return cart.Product{}, err
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return cart.Product{}, err
	}

	switch {
	case len(vs) > 0:
		p.Options = cart.VariantOptions{Variants: vs}
	case colors != "" || sizes != "":
		p.Options = cart.FreeformOptions{Colors: colors, Sizes: sizes}
	}
	return p, nil
}
