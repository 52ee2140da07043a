package httpserver

import (
	"net/url"
	"testing"

	"github.com/readnest/readnest/internal/config"
)

func TestBuildBookFilters(t *testing.T) {
	values, _ := url.ParseQuery("q= herbert &genre= Sci-Fi &limit=120")

	filters, err := buildBookFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Query == nil || *filters.Query != "herbert" {
		t.Fatalf("query not trimmed: %+v", filters.Query)
	}
	if filters.Genre == nil || *filters.Genre != "Sci-Fi" {
		t.Fatalf("genre parse failed: %+v", filters.Genre)
	}
	if filters.Limit != 120 {
		t.Fatalf("limit not parsed: %d", filters.Limit)
	}
	if filters.Cursor != nil {
		t.Fatalf("cursor should be nil when absent")
	}
}

func TestBuildBookFilters_Invalid(t *testing.T) {
	for _, raw := range []string{"limit=abc", "cursor=!!!"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildBookFilters(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestVerifyAdminBearer(t *testing.T) {
	srv := &Server{cfg: config.Config{AdminToken: "secret"}}
	cases := []struct {
		header  string
		allowed bool
	}{
		{"Bearer secret", true},
		{"Bearer secret ", true},
		{"Bearer other", false},
		{"secret", false},
		{"", false},
	}
	for _, c := range cases {
		if srv.verifyAdminBearer(c.header) != c.allowed {
			t.Fatalf("verifyAdminBearer(%q) expected %v", c.header, c.allowed)
		}
	}
}
