package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readnest/readnest/internal/domain"
)

// RatingsRepository provides helpers for per-user book ratings and keeps the
// derived mean on the book row in sync with the individual ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	BookID string
	UserID string
	Value  int
}

// Upsert inserts or updates a user's rating for a book and recomputes the
// book's mean rating, all within one transaction so the read-modify-write is
// atomic per book. The row lock on the book serializes concurrent writers to
// the same book; writers to different books proceed in parallel. Returns the
// updated book, the full rating set from the same snapshot, and whether the
// rating was newly created.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Book, []domain.Rating, bool, error) {
	if params.Value < 1 || params.Value > 5 {
		return domain.Book{}, nil, false, ErrInvalidRating
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("begin rating tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var bookID string
	err = tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, params.BookID).Scan(&bookID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Book{}, nil, false, ErrNotFound
		}
		return domain.Book{}, nil, false, fmt.Errorf("lock book row: %w", err)
	}

	const upsert = `
        INSERT INTO book_ratings (book_id, user_id, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (book_id, user_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
        RETURNING (xmax = 0) AS inserted
    `
	var inserted bool
	if err := tx.QueryRow(ctx, upsert, params.BookID, params.UserID, params.Value).Scan(&inserted); err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("upsert rating: %w", err)
	}

	recompute := fmt.Sprintf(`
        UPDATE books
        SET rating = (SELECT AVG(rating)::float8 FROM book_ratings WHERE book_id = $1),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, bookColumns)

	book, err := scanBook(tx.QueryRow(ctx, recompute, params.BookID))
	if err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("recompute book rating: %w", err)
	}

	// Read the rating set inside the transaction so callers see the same
	// snapshot the mean was computed from.
	rows, err := tx.Query(ctx, ratingsForBookQuery, params.BookID)
	if err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("list ratings: %w", err)
	}
	ratings, err := collectRatings(rows)
	if err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("list ratings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Book{}, nil, false, fmt.Errorf("commit rating tx: %w", err)
	}
	return book, ratings, inserted, nil
}

// Get retrieves a rating for a specific user/book combination.
func (r *RatingsRepository) Get(ctx context.Context, bookID, userID string) (domain.Rating, error) {
	const query = `
        SELECT book_id, user_id, rating, created_at, updated_at
        FROM book_ratings
        WHERE book_id = $1 AND user_id = $2
    `
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, bookID, userID).Scan(
		&rating.BookID,
		&rating.UserID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

const ratingsForBookQuery = `
    SELECT book_id, user_id, rating, created_at, updated_at
    FROM book_ratings
    WHERE book_id = $1
    ORDER BY created_at ASC, user_id ASC
`

// ListForBook returns every user rating recorded for a book.
func (r *RatingsRepository) ListForBook(ctx context.Context, bookID string) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, ratingsForBookQuery, bookID)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

func collectRatings(rows pgx.Rows) ([]domain.Rating, error) {
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(&rating.BookID, &rating.UserID, &rating.Value, &rating.CreatedAt, &rating.UpdatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}
