package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildBookFilters(f *testing.F) {
	seeds := []string{
		"q=dune&genre=Sci-Fi&limit=20",
		"limit=abc",
		"cursor=!!!",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		_, _ = buildBookFilters(values)
	})
}
