package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/readnest/readnest/internal/domain"
	"github.com/readnest/readnest/internal/metadata"
	"github.com/readnest/readnest/internal/repository"
)

type bookCreateRequest struct {
	ID            *string  `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   *string  `json:"description"`
	Genre         []string `json:"genre"`
	CoverImage    *string  `json:"coverImage"`
	Rating        *float64 `json:"rating"`
	PublishedDate *string  `json:"publishedDate"`
	Pages         *int     `json:"pages"`
	ISBN          *string  `json:"isbn"`
	Publisher     *string  `json:"publisher"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type bookResponse struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Author        string               `json:"author"`
	Description   *string              `json:"description,omitempty"`
	Genre         []string             `json:"genre"`
	CoverImage    *string              `json:"coverImage,omitempty"`
	Rating        float64              `json:"rating"`
	PublishedDate *string              `json:"publishedDate,omitempty"`
	Pages         *int                 `json:"pages,omitempty"`
	ISBN          *string              `json:"isbn,omitempty"`
	Publisher     *string              `json:"publisher,omitempty"`
	UserRatings   []userRatingResponse `json:"userRatings,omitempty"`
}

type userRatingResponse struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

type bookListResponse struct {
	Items      []bookResponse `json:"items"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}

func toBookResponse(book domain.Book) bookResponse {
	genre := book.Genre
	if genre == nil {
		genre = []string{}
	}
	return bookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Genre:         genre,
		CoverImage:    book.CoverImage,
		Rating:        book.Rating,
		PublishedDate: book.PublishedDate,
		Pages:         book.Pages,
		ISBN:          book.ISBN,
		Publisher:     book.Publisher,
	}
}

func toBookResponseWithRatings(book domain.Book, ratings []domain.Rating) bookResponse {
	resp := toBookResponse(book)
	for _, rating := range ratings {
		resp.UserRatings = append(resp.UserRatings, userRatingResponse{UserID: rating.UserID, Rating: rating.Value})
	}
	return resp
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filters, err := buildBookFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Books.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list books error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list books")
		return
	}

	items := make([]bookResponse, 0, len(result.Items))
	for _, book := range result.Items {
		items = append(items, toBookResponse(book))
	}
	s.respondJSON(w, http.StatusOK, bookListResponse{Items: items, NextCursor: result.NextCursor})
}

func buildBookFilters(query url.Values) (repository.BookListFilters, error) {
	var filters repository.BookListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		filters.Genre = &val
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	book, err := s.repo.Books.GetByID(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch book error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch book")
		return
	}

	ratings, err := s.repo.Ratings.ListForBook(r.Context(), bookID)
	if err != nil {
		s.logger.Printf("fetch book ratings error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch book")
		return
	}
	s.respondJSON(w, http.StatusOK, toBookResponseWithRatings(book, ratings))
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	if !s.verifyAdminBearer(r.Header.Get("Authorization")) {
		s.respondUnauthorized(w)
		return
	}

	var req bookCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title and author are required")
		return
	}
	if len(req.Genre) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "at least one genre is required")
		return
	}

	id := uuid.NewString()
	if req.ID != nil && strings.TrimSpace(*req.ID) != "" {
		id = strings.TrimSpace(*req.ID)
	}
	var rating float64
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be between 0 and 5")
			return
		}
		rating = *req.Rating
	}

	book, err := s.repo.Books.Create(r.Context(), repository.BookCreateParams{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		Description:   normalizeStringPtr(req.Description),
		Genre:         req.Genre,
		CoverImage:    normalizeStringPtr(req.CoverImage),
		Rating:        rating,
		PublishedDate: normalizeStringPtr(req.PublishedDate),
		Pages:         req.Pages,
		ISBN:          normalizeStringPtr(req.ISBN),
		Publisher:     normalizeStringPtr(req.Publisher),
	})
	if err != nil {
		s.logger.Printf("create book error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create book")
		return
	}

	enriched := s.enrichBookMetadata(r.Context(), book)

	w.Header().Set("Location", "/books/"+url.PathEscape(enriched.ID))
	s.respondJSON(w, http.StatusCreated, toBookResponse(enriched))
}

// enrichBookMetadata fills missing optional fields from the upstream metadata
// API when an ISBN is available. Failures leave the book as created.
func (s *Server) enrichBookMetadata(ctx context.Context, book domain.Book) domain.Book {
	if book.ISBN == nil {
		return book
	}
	if book.Description != nil && book.CoverImage != nil && book.Publisher != nil && book.Pages != nil {
		return book
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.MetadataTimeoutSecs)*time.Second)
	defer cancel()

	result, err := s.metadata.Fetch(ctx, *book.ISBN)
	if err != nil {
		if !errors.Is(err, metadata.ErrNotFound) {
			s.logger.Printf("metadata fetch failed for isbn %s: %v", *book.ISBN, err)
		}
		return book
	}

	updated, err := s.repo.Books.UpdateEnrichment(ctx, book.ID, result.Description, result.CoverImage, result.Publisher, result.Pages)
	if err != nil {
		s.logger.Printf("update book metadata failed: %v", err)
		return book
	}
	return updated
}

func (s *Server) handleRateBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	bookID := chi.URLParam(r, "id")

	var req rateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be an integer between 1 and 5")
		return
	}

	book, ratings, inserted, err := s.repo.Ratings.Upsert(r.Context(), repository.RatingUpsertParams{
		BookID: bookID,
		UserID: userID,
		Value:  req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		case errors.Is(err, repository.ErrInvalidRating):
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be an integer between 1 and 5")
		default:
			s.logger.Printf("upsert rating error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process rating")
		}
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, toBookResponseWithRatings(book, ratings))
}

func (s *Server) handleAddToReadingList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	bookID := chi.URLParam(r, "id")
	if _, err := s.repo.Books.GetByID(r.Context(), bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch book for reading list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reading list")
		return
	}

	if err := s.repo.Users.AddToReadingList(r.Context(), userID, bookID); err != nil {
		s.logger.Printf("add to reading list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reading list")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveFromReadingList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(r)
	if !ok {
		s.respondUnauthorized(w)
		return
	}

	bookID := chi.URLParam(r, "id")
	if err := s.repo.Users.RemoveFromReadingList(r.Context(), userID, bookID); err != nil {
		s.logger.Printf("remove from reading list error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update reading list")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
