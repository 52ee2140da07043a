package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func BenchmarkHandleRateBook(b *testing.B) {
	srv := buildTestServer(b)

	cookie, _ := registerTestUser(b, srv, "bench")
	createTestBook(b, srv, "bench-book", 0, "Sci-Fi")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(`{"rating":4}`)
		req := httptest.NewRequest(http.MethodPost, "/books/bench-book/rate", bytes.NewReader(payload))
		req.AddCookie(cookie)
		req = attachIDParam(req, "bench-book")
		rec := httptest.NewRecorder()

		srv.handleRateBook(rec, req)
		if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
