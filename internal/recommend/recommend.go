// Package recommend implements the two recommendation rankings: a personal
// ranking driven by genre affinity over the caller's reading history, and a
// social ranking driven by how common a book is among followed users'
// reading lists. State is re-read per call; nothing is cached.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/readnest/readnest/internal/domain"
)

// DefaultLimit caps the number of books returned by either ranking.
const DefaultLimit = 10

// CatalogSource yields the full book catalog in iteration order.
// *repository.BooksRepository satisfies it.
type CatalogSource interface {
	All(ctx context.Context) ([]domain.Book, error)
}

// SocialSource yields per-user reading lists and follow sets.
// *repository.UsersRepository satisfies it.
type SocialSource interface {
	ReadingList(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

// Engine produces recommendations from catalog and social snapshots.
type Engine struct {
	catalog CatalogSource
	social  SocialSource
	limit   int
}

// New constructs an Engine with the default result limit.
func New(catalog CatalogSource, social SocialSource) *Engine {
	return &Engine{catalog: catalog, social: social, limit: DefaultLimit}
}

// Personal ranks books the user has not read by genre affinity plus quality.
//
// Each genre tag on a read book adds one point of affinity for that genre;
// an unread book scores the sum of its tags' affinities plus rating/5. Ties
// keep catalog order. With an empty reading list the ranking degenerates to
// rating/5 over the whole catalog.
func (e *Engine) Personal(ctx context.Context, userID string) ([]domain.Book, error) {
	readingList, err := e.social.ReadingList(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch reading list: %w", err)
	}
	catalog, err := e.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return rankByAffinity(catalog, readingList, e.limit), nil
}

// FromFollowers ranks books by how many followees have them on their reading
// list. A book appearing twice in one followee's list still counts once per
// followee. The caller's own reading list is not excluded; a book's own
// rating plays no part in this ranking.
func (e *Engine) FromFollowers(ctx context.Context, userID string) ([]domain.Book, error) {
	following, err := e.social.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch follow list: %w", err)
	}

	lists := make([][]string, 0, len(following))
	for _, followeeID := range following {
		list, err := e.social.ReadingList(ctx, followeeID)
		if err != nil {
			return nil, fmt.Errorf("fetch reading list of %s: %w", followeeID, err)
		}
		lists = append(lists, list)
	}

	catalog, err := e.catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return rankByFolloweeCount(catalog, lists, e.limit), nil
}

func rankByAffinity(catalog []domain.Book, readingList []string, limit int) []domain.Book {
	read := make(map[string]struct{}, len(readingList))
	for _, id := range readingList {
		read[id] = struct{}{}
	}

	// Genre tally over read books: one point per tag occurrence, so a book
	// tagged [A, B] contributes to both A and B.
	affinity := make(map[string]int)
	for _, book := range catalog {
		if _, ok := read[book.ID]; !ok {
			continue
		}
		for _, genre := range book.Genre {
			affinity[genre]++
		}
	}

	type scored struct {
		book  domain.Book
		score float64
	}
	candidates := make([]scored, 0, len(catalog))
	for _, book := range catalog {
		if _, ok := read[book.ID]; ok {
			continue
		}
		sum := 0
		for _, genre := range book.Genre {
			sum += affinity[genre]
		}
		candidates = append(candidates, scored{book: book, score: float64(sum) + book.Rating/5})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := make([]domain.Book, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		result = append(result, c.book)
	}
	return result
}

func rankByFolloweeCount(catalog []domain.Book, followeeLists [][]string, limit int) []domain.Book {
	counts := make(map[string]int)
	for _, list := range followeeLists {
		seen := make(map[string]struct{}, len(list))
		for _, bookID := range list {
			if _, ok := seen[bookID]; ok {
				continue
			}
			seen[bookID] = struct{}{}
			counts[bookID]++
		}
	}

	candidates := make([]domain.Book, 0, len(counts))
	for _, book := range catalog {
		if counts[book.ID] > 0 {
			candidates = append(candidates, book)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return counts[candidates[i].ID] > counts[candidates[j].ID]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
