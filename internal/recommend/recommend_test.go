package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/readnest/readnest/internal/domain"
)

func book(id string, rating float64, genres ...string) domain.Book {
	return domain.Book{ID: id, Title: "Book " + id, Author: "Author", Genre: genres, Rating: rating}
}

type stubCatalog struct {
	books []domain.Book
	err   error
}

func (s stubCatalog) All(ctx context.Context) ([]domain.Book, error) {
	return s.books, s.err
}

type stubSocial struct {
	readingLists map[string][]string
	following    map[string][]string
	err          error
}

func (s stubSocial) ReadingList(ctx context.Context, userID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.readingLists[userID], nil
}

func (s stubSocial) Following(ctx context.Context, userID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.following[userID], nil
}

func ids(books []domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankByAffinity(t *testing.T) {
	tests := []struct {
		name        string
		catalog     []domain.Book
		readingList []string
		want        []string
	}{
		{
			name: "genre affinity beats raw rating",
			catalog: []domain.Book{
				book("b1", 4.0, "Sci-Fi"),
				book("b2", 3.0, "Sci-Fi"),
				book("b3", 5.0, "Romance"),
			},
			readingList: []string{"b1"},
			// b2 scores 1 + 3.0/5 = 1.6, b3 scores 0 + 5.0/5 = 1.0.
			want: []string{"b2", "b3"},
		},
		{
			name: "empty reading list falls back to rating ranking",
			catalog: []domain.Book{
				book("b1", 2.0, "Sci-Fi"),
				book("b2", 5.0, "Romance"),
				book("b3", 3.5, "History"),
			},
			readingList: nil,
			want:        []string{"b2", "b3", "b1"},
		},
		{
			name: "multi-genre books count each tag",
			catalog: []domain.Book{
				book("b1", 0, "Sci-Fi", "Adventure"),
				book("b2", 0, "Sci-Fi", "Adventure"),
				book("b3", 0, "Romance"),
			},
			readingList: []string{"b1"},
			// b2 scores 2 (both tags), b3 scores 0.
			want: []string{"b2", "b3"},
		},
		{
			name: "ties keep catalog order",
			catalog: []domain.Book{
				book("b1", 3.0, "Sci-Fi"),
				book("b2", 3.0, "Romance"),
				book("b3", 3.0, "History"),
			},
			readingList: nil,
			want:        []string{"b1", "b2", "b3"},
		},
		{
			name:        "fully read catalog yields nothing",
			catalog:     []domain.Book{book("b1", 4.0, "Sci-Fi")},
			readingList: []string{"b1"},
			want:        []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rankByAffinity(tt.catalog, tt.readingList, DefaultLimit)
			if !equalIDs(ids(got), tt.want) {
				t.Fatalf("rankByAffinity = %v, want %v", ids(got), tt.want)
			}
			for _, b := range got {
				for _, read := range tt.readingList {
					if b.ID == read {
						t.Fatalf("recommendation %s is on the reading list", b.ID)
					}
				}
			}
		})
	}
}

func TestRankByAffinity_LimitsToTen(t *testing.T) {
	catalog := make([]domain.Book, 0, 15)
	for i := 0; i < 15; i++ {
		catalog = append(catalog, book(string(rune('a'+i)), float64(i%5), "Sci-Fi"))
	}

	got := rankByAffinity(catalog, nil, DefaultLimit)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
}

func TestRankByFolloweeCount(t *testing.T) {
	catalog := []domain.Book{
		book("b1", 1.0, "Sci-Fi"),
		book("b2", 5.0, "Romance"),
		book("b3", 4.0, "History"),
	}

	tests := []struct {
		name  string
		lists [][]string
		want  []string
	}{
		{
			name:  "ranked by occurrence count",
			lists: [][]string{{"b1", "b2"}, {"b1"}},
			want:  []string{"b1", "b2"},
		},
		{
			name:  "duplicate within one list counts once",
			lists: [][]string{{"b2", "b2"}, {"b1"}, {"b1"}},
			want:  []string{"b1", "b2"},
		},
		{
			name:  "rating is ignored for ties, catalog order wins",
			lists: [][]string{{"b1", "b2", "b3"}},
			want:  []string{"b1", "b2", "b3"},
		},
		{
			name:  "no followees yields empty",
			lists: nil,
			want:  []string{},
		},
		{
			name:  "followees with empty lists yield empty",
			lists: [][]string{nil, {}},
			want:  []string{},
		},
		{
			name:  "unknown book ids are skipped",
			lists: [][]string{{"ghost", "b3"}},
			want:  []string{"b3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rankByFolloweeCount(catalog, tt.lists, DefaultLimit)
			if !equalIDs(ids(got), tt.want) {
				t.Fatalf("rankByFolloweeCount = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestRankByFolloweeCount_LimitsToTen(t *testing.T) {
	catalog := make([]domain.Book, 0, 15)
	list := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		catalog = append(catalog, book(id, 3.0, "Sci-Fi"))
		list = append(list, id)
	}

	got := rankByFolloweeCount(catalog, [][]string{list}, DefaultLimit)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
}

func TestEngine_Personal(t *testing.T) {
	catalog := stubCatalog{books: []domain.Book{
		book("b1", 4.0, "Sci-Fi"),
		book("b2", 3.0, "Sci-Fi"),
		book("b3", 5.0, "Romance"),
	}}
	social := stubSocial{readingLists: map[string][]string{"u1": {"b1"}}}

	engine := New(catalog, social)
	got, err := engine.Personal(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if !equalIDs(ids(got), []string{"b2", "b3"}) {
		t.Fatalf("Personal = %v, want [b2 b3]", ids(got))
	}

	// Unchanged state produces identical ordered output.
	again, err := engine.Personal(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Personal (second call): %v", err)
	}
	if !equalIDs(ids(got), ids(again)) {
		t.Fatalf("Personal not idempotent: %v then %v", ids(got), ids(again))
	}
}

func TestEngine_FromFollowers(t *testing.T) {
	catalog := stubCatalog{books: []domain.Book{
		book("b1", 1.0, "Sci-Fi"),
		book("b2", 5.0, "Romance"),
	}}
	social := stubSocial{
		following: map[string][]string{"u1": {"u2", "u3"}},
		readingLists: map[string][]string{
			"u2": {"b1", "b2"},
			"u3": {"b1"},
		},
	}

	engine := New(catalog, social)
	got, err := engine.FromFollowers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FromFollowers: %v", err)
	}
	if !equalIDs(ids(got), []string{"b1", "b2"}) {
		t.Fatalf("FromFollowers = %v, want [b1 b2]", ids(got))
	}

	again, err := engine.FromFollowers(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FromFollowers (second call): %v", err)
	}
	if !equalIDs(ids(got), ids(again)) {
		t.Fatalf("FromFollowers not idempotent: %v then %v", ids(got), ids(again))
	}
}

func TestEngine_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("storage down")

	engine := New(stubCatalog{err: boom}, stubSocial{})
	if _, err := engine.Personal(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("Personal error = %v, want wrapped %v", err, boom)
	}

	engine = New(stubCatalog{}, stubSocial{err: boom})
	if _, err := engine.Personal(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("Personal social error = %v, want wrapped %v", err, boom)
	}
	if _, err := engine.FromFollowers(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("FromFollowers error = %v, want wrapped %v", err, boom)
	}
}
