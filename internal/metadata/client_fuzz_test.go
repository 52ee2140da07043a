package metadata

import "testing"

func FuzzConvertToResult(f *testing.F) {
	f.Add("Ace Books", "  https://covers.example.com/dune.jpg  ", "A desert planet epic.", 412)
	f.Add("", "", "", 0)
	f.Add("   ", "x", " ", -5)

	f.Fuzz(func(t *testing.T, publisher, coverImage, description string, pages int) {
		resp := apiResponse{
			Publisher:   optionalString(publisher),
			CoverImage:  optionalString(coverImage),
			Description: optionalString(description),
		}
		if pages != 0 {
			resp.Pages = &pages
		}

		result := convertToResult(resp)
		if result == nil {
			t.Fatalf("convertToResult returned nil result")
		}
		if result.Publisher != nil && *result.Publisher == "" {
			t.Fatalf("publisher should be nil rather than empty")
		}
		if result.CoverImage != nil && *result.CoverImage == "" {
			t.Fatalf("cover image should be nil rather than empty")
		}
		if result.Pages != nil && *result.Pages <= 0 {
			t.Fatalf("pages should be positive when present, got %d", *result.Pages)
		}
	})
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
