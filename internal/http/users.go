package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/readnest/readnest/internal/repository"
)

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "query parameter q is required")
		return
	}

	users, err := s.repo.Users.Search(r.Context(), query, callerID)
	if err != nil {
		s.logger.Printf("search users error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search users")
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := s.repo.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch user error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUserReadingList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if _, err := s.repo.Users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch user for reading list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reading list")
		return
	}

	books, err := s.repo.Users.ReadingListBooks(r.Context(), userID)
	if err != nil {
		s.logger.Printf("fetch reading list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reading list")
		return
	}

	items := make([]bookResponse, 0, len(books))
	for _, book := range books {
		items = append(items, toBookResponse(book))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	followeeID := chi.URLParam(r, "id")
	if followeeID == callerID {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "cannot follow yourself")
		return
	}

	if _, err := s.repo.Users.GetByID(r.Context(), followeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch followee error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to follow user")
		return
	}

	if err := s.repo.Users.Follow(r.Context(), callerID, followeeID); err != nil {
		s.logger.Printf("follow error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to follow user")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	followeeID := chi.URLParam(r, "id")
	if err := s.repo.Users.Unfollow(r.Context(), callerID, followeeID); err != nil {
		s.logger.Printf("unfollow error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to unfollow user")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.respondFollowList(w, r, s.repo.Users.Followers)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.respondFollowList(w, r, s.repo.Users.Following)
}

func (s *Server) respondFollowList(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID string) ([]string, error)) {
	userID := chi.URLParam(r, "id")

	if _, err := s.repo.Users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch user for follow list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch follow list")
		return
	}

	ids, err := fetch(r.Context(), userID)
	if err != nil {
		s.logger.Printf("fetch follow list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch follow list")
		return
	}

	items := make([]userResponse, 0, len(ids))
	for _, id := range ids {
		user, err := s.repo.Users.GetByID(r.Context(), id)
		if err != nil {
			s.logger.Printf("fetch follow list member error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch follow list")
			return
		}
		items = append(items, toUserResponse(user))
	}
	s.respondJSON(w, http.StatusOK, items)
}
