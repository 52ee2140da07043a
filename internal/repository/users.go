package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readnest/readnest/internal/domain"
)

// UsersRepository provides persistence helpers for accounts, reading lists,
// and the follow graph.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id,
    name,
    email,
    password_hash,
    created_at,
    updated_at
`

// UserCreateParams bundles the fields required to register a user.
type UserCreateParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// Create registers a new user with a freshly minted id.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, name, email, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, userColumns)

	row := r.pool.QueryRow(ctx, query, uuid.NewString(), params.Name, strings.ToLower(params.Email), params.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email, including the password hash for login checks.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Search finds users whose name or email contains the query, excluding the
// caller's own account.
func (r *UsersRepository) Search(ctx context.Context, query string, excludeID string) ([]domain.User, error) {
	q := "%" + strings.TrimSpace(query) + "%"
	stmt := fmt.Sprintf(`
        SELECT %s FROM users
        WHERE (name ILIKE $1 OR email ILIKE $1) AND id <> $2
        ORDER BY name ASC, id ASC
        LIMIT 50
    `, userColumns)

	rows, err := r.pool.Query(ctx, stmt, q, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ReadingList returns the set of book ids on a user's reading list.
func (r *UsersRepository) ReadingList(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT book_id FROM reading_list WHERE user_id = $1 ORDER BY added_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ReadingListBooks returns the full book records on a user's reading list,
// in catalog order.
func (r *UsersRepository) ReadingListBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM books b
        JOIN reading_list rl ON rl.book_id = b.id
        WHERE rl.user_id = $1
        ORDER BY b.created_at ASC, b.id ASC
    `, prefixedBookColumns("b"))

	rows, err := r.pool.Query(ctx, query, userID)
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

// AddToReadingList puts a book on the user's reading list. Adding a book that
// is already listed is a no-op.
func (r *UsersRepository) AddToReadingList(ctx context.Context, userID, bookID string) error {
	const query = `
        INSERT INTO reading_list (user_id, book_id)
        VALUES ($1,$2)
        ON CONFLICT (user_id, book_id) DO NOTHING
    `
	_, err := r.pool.Exec(ctx, query, userID, bookID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RemoveFromReadingList drops a book from the user's reading list. Removing a
// book that is not listed is a no-op.
func (r *UsersRepository) RemoveFromReadingList(ctx context.Context, userID, bookID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reading_list WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	return err
}

// Following returns the ids of users the given user follows.
func (r *UsersRepository) Following(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// Followers returns the ids of users following the given user.
func (r *UsersRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// Follow records that follower follows followee. Idempotent; the followee
// must exist.
func (r *UsersRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	const query = `
        INSERT INTO follows (follower_id, followee_id)
        VALUES ($1,$2)
        ON CONFLICT (follower_id, followee_id) DO NOTHING
    `
	_, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Unfollow removes the follow edge if present.
func (r *UsersRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func prefixedBookColumns(alias string) string {
	cols := strings.Split(bookColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
