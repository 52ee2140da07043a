package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readnest/readnest/internal/domain"
)

// BooksRepository provides persistence helpers for the book catalog.
type BooksRepository struct {
	pool *pgxpool.Pool
}

const bookColumns = `
    id,
    title,
    author,
    description,
    genre,
    cover_image,
    rating,
    published_date,
    pages,
    isbn,
    publisher,
    created_at,
    updated_at
`

// BookCreateParams bundles the fields required to create a book.
type BookCreateParams struct {
	ID            string
	Title         string
	Author        string
	Description   *string
	Genre         []string
	CoverImage    *string
	Rating        float64
	PublishedDate *string
	Pages         *int
	ISBN          *string
	Publisher     *string
}

// BookListFilters encapsulates search and pagination options.
type BookListFilters struct {
	Query  *string
	Genre  *string
	Limit  int
	Cursor *BookCursor
}

// BookCursor allows stable pagination by created_at/id.
type BookCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// BookListResult returns the paginated payload.
type BookListResult struct {
	Items      []domain.Book
	NextCursor *string
}

// Create inserts a new book row and returns the stored entity.
func (r *BooksRepository) Create(ctx context.Context, params BookCreateParams) (domain.Book, error) {
	query := fmt.Sprintf(`
        INSERT INTO books (id, title, author, description, genre, cover_image, rating, published_date, pages, isbn, publisher)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING %s
    `, bookColumns)

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.Title, params.Author, params.Description, params.Genre,
		params.CoverImage, params.Rating, params.PublishedDate, params.Pages, params.ISBN, params.Publisher)
	return scanBook(row)
}

// GetByID fetches a book by its identifier.
func (r *BooksRepository) GetByID(ctx context.Context, id string) (domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)
	row := r.pool.QueryRow(ctx, query, id)
	book, err := scanBook(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Book{}, ErrNotFound
		}
		return domain.Book{}, err
	}
	return book, nil
}

// All returns the full catalog in iteration order (seed order). The
// recommendation engine relies on this ordering for stable tie-breaks.
func (r *BooksRepository) All(ctx context.Context) ([]domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY created_at ASC, id ASC`, bookColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateEnrichment fills optional metadata fields, keeping existing values
// when the replacement is nil.
func (r *BooksRepository) UpdateEnrichment(ctx context.Context, id string, description, coverImage, publisher *string, pages *int) (domain.Book, error) {
	query := fmt.Sprintf(`
        UPDATE books
        SET description = COALESCE($2, description),
            cover_image = COALESCE($3, cover_image),
            publisher = COALESCE($4, publisher),
            pages = COALESCE($5, pages),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, bookColumns)

	row := r.pool.QueryRow(ctx, query, id, description, coverImage, publisher, pages)
	book, err := scanBook(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Book{}, ErrNotFound
		}
		return domain.Book{}, err
	}
	return book, nil
}

// List returns books that match the provided filters.
func (r *BooksRepository) List(ctx context.Context, filters BookListFilters) (BookListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	} else if filters.Limit > 200 {
		filters.Limit = 200
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		p1 := arg(q)
		p2 := arg(q)
		where = append(where, fmt.Sprintf("(title ILIKE %s OR author ILIKE %s)", p1, p2))
	}
	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		// The filter string is the pattern side, so wildcard characters in
		// stored tags stay literal.
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(genre) AS g WHERE g ILIKE %s)", arg(strings.TrimSpace(*filters.Genre))))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) > (%s, %s)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(bookColumns)
	queryBuilder.WriteString(" FROM books")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return BookListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return BookListResult{}, err
		}
		items = append(items, book)
	}
	if err := rows.Err(); err != nil {
		return BookListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		cursor := BookCursor{CreatedAt: last.CreatedAt, ID: last.ID}
		token, err := encodeCursor(cursor)
		if err != nil {
			return BookListResult{}, err
		}
		nextCursor = &token
	}

	return BookListResult{Items: items, NextCursor: nextCursor}, nil
}

func scanBook(row pgx.Row) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Genre,
		&book.CoverImage,
		&book.Rating,
		&book.PublishedDate,
		&book.Pages,
		&book.ISBN,
		&book.Publisher,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func encodeCursor(c BookCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a BookCursor.
func DecodeCursor(token string) (*BookCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor BookCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
