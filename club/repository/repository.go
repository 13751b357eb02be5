// Package repository provides the Postgres implementations of the club
// repository contracts, built on sqlx. Every compound mutation that must be
// atomic (uniqueness check + insert, claim = delete + insert) is a single
// statement or a single transaction; the flows never stitch two calls
// together around engine logic.
package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Repositories bundles all Postgres-backed repositories over one pool.
type Repositories struct {
	Songs          *SongRepo
	People         *PersonRepo
	Participations *ParticipationRepo
	PendingRoles   *PendingRoleRepo
	Concerts       *ConcertRepo
}

// New wires every repository to the shared pool.
func New(db *sqlx.DB) *Repositories {
	return &Repositories{
		Songs:          &SongRepo{db: db},
		People:         &PersonRepo{db: db},
		Participations: &ParticipationRepo{db: db},
		PendingRoles:   &PendingRoleRepo{db: db},
		Concerts:       &ConcertRepo{db: db},
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
