package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storerate/storerate/internal/db"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateRating indicates a (user, store) pair already has a rating. The
// UNIQUE constraint is the single source of truth; races and sequential
// duplicates both surface as this error.
var ErrDuplicateRating = errors.New("repository: user has already rated this store")

// ErrDuplicateEmail indicates the email is already registered.
var ErrDuplicateEmail = errors.New("repository: email already registered")

// ErrInvalidScore indicates a score outside the allowed 1..5 range.
var ErrInvalidScore = errors.New("repository: score must be between 1 and 5")

// ErrNoFields indicates an update patch with nothing to change.
var ErrNoFields = errors.New("repository: no fields to update")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Stores  *StoresRepository
	Ratings *RatingsRepository
}

// New constructs a Repository backed by the provided database.
func New(d *db.DB) *Repository {
	return NewWithPool(d.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:   &UsersRepository{pool: pool},
		Stores:  &StoresRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
	}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
