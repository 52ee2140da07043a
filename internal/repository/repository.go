package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readnest/readnest/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidRating indicates a rating value outside the accepted 1..5 range.
// Handlers validate before calling; the repository still refuses out-of-range
// values rather than persisting them.
var ErrInvalidRating = errors.New("repository: rating must be an integer between 1 and 5")

// ErrDuplicateEmail indicates a registration attempt with an email already in use.
var ErrDuplicateEmail = errors.New("repository: email already registered")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Books   *BooksRepository
	Ratings *RatingsRepository
	Users   *UsersRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Books:   &BooksRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
		Users:   &UsersRepository{pool: pool},
	}
}
