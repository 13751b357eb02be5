package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pxc1984/musicclubbot/club"
)

// PersonRepo persists club members keyed by Telegram user id.
type PersonRepo struct {
	db *sqlx.DB
}

// Upsert registers the person on first /start and refreshes the stored name
// afterwards. The returned bool is true when the row was newly inserted.
func (r *PersonRepo) Upsert(ctx context.Context, id int64, name string) (club.Person, bool, error) {
	const q = `
		INSERT INTO people (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		RETURNING (xmax = 0) AS inserted`
	var inserted bool
	if err := r.db.QueryRowxContext(ctx, q, id, name).Scan(&inserted); err != nil {
		return club.Person{}, false, fmt.Errorf("upsert person %d: %w", id, err)
	}
	return club.Person{ID: id, Name: name}, inserted, nil
}

// Get fetches one person by id.
func (r *PersonRepo) Get(ctx context.Context, id int64) (club.Person, error) {
	var person club.Person
	if err := r.db.GetContext(ctx, &person, `SELECT id, name FROM people WHERE id = $1`, id); err != nil {
		if noRows(err) {
			return club.Person{}, club.ErrNotFound
		}
		return club.Person{}, fmt.Errorf("get person %d: %w", id, err)
	}
	return person, nil
}

// List returns every registered person ordered by id.
func (r *PersonRepo) List(ctx context.Context) ([]club.Person, error) {
	var people []club.Person
	if err := r.db.SelectContext(ctx, &people, `SELECT id, name FROM people ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}
