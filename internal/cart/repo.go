package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context, s Scope) ([]Item, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	where, owner := ownerPredicate(s, 1)
	rows, err := r.DB.Query(ctx, `
		SELECT id, COALESCE(user_id,''), COALESCE(session_id,''), product_id, quantity, created_at, updated_at
		FROM cart_items WHERE `+where+` ORDER BY created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.SessionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Add upserts a line: adding a product already in the cart bumps its
// quantity instead of creating a second row.
func (r *Repo) Add(ctx context.Context, s Scope, productID string, quantity int) (*Item, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	var userID, sessionID *string
	if s.UserID != "" {
		userID = &s.UserID
	} else {
		sessionID = &s.SessionID
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items (id, user_id, session_id, product_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, COALESCE(user_id,''), COALESCE(session_id,''), product_id, quantity, created_at, updated_at`,
		uuid.NewString(), userID, sessionID, productID, quantity)

	var it Item
	if err := row.Scan(&it.ID, &it.UserID, &it.SessionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) SetQuantity(ctx context.Context, s Scope, itemID string, quantity int) (*Item, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	where, owner := ownerPredicate(s, 3)
	row := r.DB.QueryRow(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = now()
		WHERE id = $2 AND `+where+`
		RETURNING id, COALESCE(user_id,''), COALESCE(session_id,''), product_id, quantity, created_at, updated_at`,
		quantity, itemID, owner)

	var it Item
	err := row.Scan(&it.ID, &it.UserID, &it.SessionID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Remove(ctx context.Context, s Scope, itemID string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	where, owner := ownerPredicate(s, 2)
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND `+where, itemID, owner)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, s Scope) error {
	if err := s.Validate(); err != nil {
		return err
	}
	where, owner := ownerPredicate(s, 1)
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE `+where, owner)
	return err
}

// ownerPredicate assumes a validated scope; n is the placeholder index the
// owner argument takes in the surrounding statement.
func ownerPredicate(s Scope, n int) (string, any) {
	if s.UserID != "" {
		return fmt.Sprintf("user_id = $%d", n), s.UserID
	}
	return fmt.Sprintf("session_id = $%d", n), s.SessionID
}
