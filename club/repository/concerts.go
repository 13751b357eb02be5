package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pxc1984/musicclubbot/club"
)

// ConcertRepo persists upcoming club events.
type ConcertRepo struct {
	db *sqlx.DB
}

// Create inserts a concert.
func (r *ConcertRepo) Create(ctx context.Context, name string, date time.Time) (club.Concert, error) {
	const q = `INSERT INTO concerts (name, date) VALUES ($1, $2) RETURNING id`
	concert := club.Concert{Name: name, Date: date}
	if err := r.db.QueryRowxContext(ctx, q, name, date).Scan(&concert.ID); err != nil {
		return club.Concert{}, fmt.Errorf("insert concert: %w", err)
	}
	return concert, nil
}

// List returns every concert ordered by date, soonest first.
func (r *ConcertRepo) List(ctx context.Context) ([]club.Concert, error) {
	const q = `SELECT id, name, date FROM concerts ORDER BY date, id`
	var concerts []club.Concert
	if err := r.db.SelectContext(ctx, &concerts, q); err != nil {
		return nil, fmt.Errorf("list concerts: %w", err)
	}
	return concerts, nil
}
