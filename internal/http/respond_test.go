package httpserver

import "testing"

func TestNormalizeStringPtr(t *testing.T) {
	padded := "  Dune  "
	empty := "   "

	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil stays nil", nil, nil},
		{"padding trimmed", &padded, strPtr("Dune")},
		{"blank collapses to nil", &empty, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeStringPtr(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("got %q, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Fatalf("got %v, want %q", got, *tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
