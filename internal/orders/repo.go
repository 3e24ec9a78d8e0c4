package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("submission not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repo struct{ DB *pgxpool.Pool }

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	external_id  TEXT NOT NULL UNIQUE,
	session_id   TEXT NOT NULL,
	author_name  TEXT NOT NULL,
	email        TEXT NOT NULL,
	title        TEXT NOT NULL,
	postal_code  TEXT NOT NULL,
	address      TEXT NOT NULL,
	phone_number TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	total_items  INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS submission_items (
	id            TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
	product_id    TEXT NOT NULL,
	name          TEXT NOT NULL,
	variant_id    TEXT NOT NULL DEFAULT '',
	color         TEXT NOT NULL DEFAULT '',
	size          TEXT NOT NULL DEFAULT '',
	sku           TEXT NOT NULL DEFAULT '',
	qty           INTEGER NOT NULL CHECK (qty > 0)
);`

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, schema)
	return err
}

// RecordSubmission is idempotent on external_id: a second call with the same
// external id returns the existing id and existed=true.
func (r *Repo) RecordSubmission(ctx context.Context, s Submission) (id string, existed bool, err error) {
	row := r.DB.QueryRow(ctx, `SELECT id FROM submissions WHERE external_id=$1`, s.ExternalID)
	if err = row.Scan(&id); err == nil {
		return id, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	for _, it := range s.Items {
		if it.Qty <= 0 {
			return "", false, fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusReceived
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO submissions(id, external_id, session_id, author_name, email, title,
		                        postal_code, address, phone_number, notes, status, total_items)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.ExternalID, s.SessionID, s.AuthorName, s.Email, s.Title,
		s.PostalCode, s.Address, s.PhoneNumber, s.Notes, string(s.Status), s.TotalItems,
	)
	if err != nil {
		return "", false, err
	}

	for _, it := range s.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO submission_items(id, submission_id, product_id, name, variant_id, color, size, sku, qty)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			uuid.NewString(), s.ID, it.ProductID, it.Name, it.VariantID, it.Color, it.Size, it.SKU, it.Qty,
		); err != nil {
			return "", false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, err
	}
	return s.ID, false, nil
}

func (r *Repo) GetSubmission(ctx context.Context, id string) (Submission, error) {
	var s Submission
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, external_id, session_id, author_name, email, title, postal_code, address,
		       phone_number, notes, status, total_items, created_at, updated_at
		FROM submissions WHERE id=$1`, id).
		Scan(&s.ID, &s.ExternalID, &s.SessionID, &s.AuthorName, &s.Email, &s.Title, &s.PostalCode,
			&s.Address, &s.PhoneNumber, &s.Notes, &status, &s.TotalItems, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	s.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT id, submission_id, product_id, name, variant_id, color, size, sku, qty
		FROM submission_items WHERE submission_id=$1 ORDER BY name, id`, id)
	if err != nil {
		return Submission{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SubmissionItem
		if err := rows.Scan(&it.ID, &it.SubmissionID, &it.ProductID, &it.Name, &it.VariantID,
			&it.Color, &it.Size, &it.SKU, &it.Qty); err != nil {
			return Submission{}, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

// ListSubmissions returns the newest submissions first, without items.
func (r *Repo) ListSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, external_id, session_id, author_name, email, title, postal_code, address,
		       phone_number, notes, status, total_items, created_at, updated_at
		FROM submissions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		var status string
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.SessionID, &s.AuthorName, &s.Email, &s.Title,
			&s.PostalCode, &s.Address, &s.PhoneNumber, &s.Notes, &status, &s.TotalItems,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Status = Status(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus moves a submission forward, rejecting transitions the status table forbids.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from string
	if err := tx.QueryRow(ctx, `SELECT status FROM submissions WHERE id=$1 FOR UPDATE`, id).Scan(&from); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !CanTransition(Status(from), to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE submissions SET status=$2, updated_at=now() WHERE id=$1`, id, string(to)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
