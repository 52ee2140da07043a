package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedFile mirrors the flat-file catalog layout: {"books":[...]}.
type seedFile struct {
	Books []seedBook `json:"books"`
}

type seedBook struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	Description   *string      `json:"description"`
	Genre         []string     `json:"genre"`
	CoverImage    *string      `json:"coverImage"`
	Rating        float64      `json:"rating"`
	PublishedDate *string      `json:"publishedDate"`
	Pages         *int         `json:"pages"`
	ISBN          *string      `json:"isbn"`
	Publisher     *string      `json:"publisher"`
	UserRatings   []seedRating `json:"userRatings"`
}

type seedRating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

func main() {
	var (
		data  = flag.String("data", "data/books.json", "path to the catalog JSON file")
		dbURL = flag.String("db", os.Getenv("DB_URL"), "postgres connection URL (defaults to DB_URL)")
	)
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("database URL required: pass -db or set DB_URL")
	}

	payload, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read catalog file: %v", err)
	}

	var file seedFile
	if err := json.Unmarshal(payload, &file); err != nil {
		log.Fatalf("parse catalog file: %v", err)
	}

	books, err := validateSeed(file.Books)
	if err != nil {
		log.Fatalf("invalid catalog: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	inserted, err := seed(ctx, pool, books)
	if err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	log.Printf("seeded %d books from %s", inserted, *data)
}

// validateSeed rejects malformed records at the boundary rather than letting
// them reach scoring logic. Missing ids are minted; everything else must be
// present and in range.
func validateSeed(books []seedBook) ([]seedBook, error) {
	seen := make(map[string]struct{}, len(books))
	out := make([]seedBook, 0, len(books))
	for i, book := range books {
		book.Title = strings.TrimSpace(book.Title)
		book.Author = strings.TrimSpace(book.Author)
		if book.Title == "" || book.Author == "" {
			return nil, fmt.Errorf("book %d: title and author are required", i)
		}
		if book.ID = strings.TrimSpace(book.ID); book.ID == "" {
			book.ID = uuid.NewString()
		}
		if _, dup := seen[book.ID]; dup {
			return nil, fmt.Errorf("book %d: duplicate id %q", i, book.ID)
		}
		seen[book.ID] = struct{}{}
		if book.Rating < 0 || book.Rating > 5 {
			return nil, fmt.Errorf("book %d (%s): rating %v out of range", i, book.ID, book.Rating)
		}
		raters := make(map[string]struct{}, len(book.UserRatings))
		for _, rating := range book.UserRatings {
			if rating.UserID == "" {
				return nil, fmt.Errorf("book %d (%s): rating without userId", i, book.ID)
			}
			if _, dup := raters[rating.UserID]; dup {
				return nil, fmt.Errorf("book %d (%s): duplicate rating for user %s", i, book.ID, rating.UserID)
			}
			raters[rating.UserID] = struct{}{}
			if rating.Rating < 1 || rating.Rating > 5 {
				return nil, fmt.Errorf("book %d (%s): rating %d for user %s out of range", i, book.ID, rating.Rating, rating.UserID)
			}
		}
		out = append(out, book)
	}
	return out, nil
}

func seed(ctx context.Context, pool *pgxpool.Pool, books []seedBook) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, book := range books {
		_, err := tx.Exec(ctx, `
            INSERT INTO books (id, title, author, description, genre, cover_image, rating, published_date, pages, isbn, publisher)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
            ON CONFLICT (id) DO NOTHING
        `, book.ID, book.Title, book.Author, book.Description, book.Genre,
			book.CoverImage, book.Rating, book.PublishedDate, book.Pages, book.ISBN, book.Publisher)
		if err != nil {
			return 0, fmt.Errorf("insert book %s: %w", book.ID, err)
		}

		if len(book.UserRatings) == 0 {
			// A curated rating survives until the first submission.
			continue
		}

		for _, r := range book.UserRatings {
			_, err := tx.Exec(ctx, `
                INSERT INTO book_ratings (book_id, user_id, rating)
                VALUES ($1,$2,$3)
                ON CONFLICT (book_id, user_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
            `, book.ID, r.UserID, r.Rating)
			if err != nil {
				return 0, fmt.Errorf("insert rating for book %s user %s: %w", book.ID, r.UserID, err)
			}
		}

		// Recompute from the stored rows rather than the file, so a re-seed
		// over existing ratings still lands on the true mean.
		_, err = tx.Exec(ctx, `
            UPDATE books
            SET rating = (SELECT AVG(rating)::float8 FROM book_ratings WHERE book_id = $1),
                updated_at = now()
            WHERE id = $1
        `, book.ID)
		if err != nil {
			return 0, fmt.Errorf("recompute rating for book %s: %w", book.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(books), nil
}
