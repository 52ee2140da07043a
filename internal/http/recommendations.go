package httpserver

import (
	"net/http"

	"github.com/readnest/readnest/internal/domain"
)

func (s *Server) handlePersonalRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	books, err := s.engine.Personal(r.Context(), userID)
	if err != nil {
		s.logger.Printf("personal recommendations error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get recommendations")
		return
	}
	s.respondJSON(w, http.StatusOK, toBookResponses(books))
}

func (s *Server) handleFollowerRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	books, err := s.engine.FromFollowers(r.Context(), userID)
	if err != nil {
		s.logger.Printf("follower recommendations error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get recommendations")
		return
	}
	s.respondJSON(w, http.StatusOK, toBookResponses(books))
}

func toBookResponses(books []domain.Book) []bookResponse {
	items := make([]bookResponse, 0, len(books))
	for _, book := range books {
		items = append(items, toBookResponse(book))
	}
	return items
}
