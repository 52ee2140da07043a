package metadata

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestHTTPClientSmoke verifies the client can parse at least one record from
// a running metadata service (see cmd/metadata-mock).
func TestHTTPClientSmoke(t *testing.T) {
	baseURL := os.Getenv("METADATA_URL")
	if baseURL == "" {
		t.Skip("METADATA_URL not provided")
	}
	apiKey := os.Getenv("METADATA_API_KEY")
	client, err := NewHTTPClient(baseURL, apiKey, 3*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.Fetch(ctx, "9780441172719")
	if err != nil {
		t.Fatalf("fetch mock data: %v", err)
	}
	if result.Publisher == nil && result.Pages == nil && result.CoverImage == nil {
		t.Fatalf("metadata payload carries no usable fields: %+v", result)
	}
}
