package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/halloran/medkit/internal/apperr"
	"github.com/halloran/medkit/internal/cardservice"
	"github.com/halloran/medkit/internal/index"
)

// EventPublisher receives card mutation notifications so connected clients
// can refresh. sse.Broker satisfies it.
type EventPublisher interface {
	PublishCardEvent(kind, id string)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *cardservice.Service
	events EventPublisher
}

// NewHandler creates a new Handler. events may be nil when no live clients
// are served.
func NewHandler(svc *cardservice.Service, events EventPublisher) *Handler {
	return &Handler{svc: svc, events: events}
}

func (h *Handler) publish(kind, id string) {
	if h.events != nil {
		h.events.PublishCardEvent(kind, id)
	}
}

// ListCards handles GET /cards with optional chapter/difficulty/type/tag
// filters and pagination.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	chapter, _ := strconv.Atoi(q.Get("chapter"))
	f := index.Filter{
		Chapter:    chapter,
		Difficulty: q.Get("difficulty"),
		Type:       q.Get("type"),
		Tag:        q.Get("tag"),
	}

	items, total, err := h.svc.ListCards(r.Context(), f, limit, offset)
	if err != nil {
		slog.Error("list cards failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []cardservice.CardDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": items,
		"total": total,
	})
}

// GetCard handles GET /cards/{id}.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	card, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get card failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /cards.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var in cardservice.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	card, err := h.svc.CreateCard(r.Context(), in)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create card failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publish("created", card.ID)
	writeJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /cards/{id} with optional If-Match optimistic
// concurrency against the store checksum.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var in cardservice.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	card, err := h.svc.UpdateCard(r.Context(), id, in, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update card failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publish("updated", card.ID)
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{id}.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCard(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete card failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publish("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Chapters handles GET /chapters.
func (h *Handler) Chapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.svc.Chapters(r.Context())
	if err != nil {
		slog.Error("chapters failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if chapters == nil {
		chapters = []index.ChapterInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chapters": chapters,
	})
}

// BuildSession handles POST /session.
func (h *Handler) BuildSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var opts cardservice.SessionOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cards, err := h.svc.BuildSession(r.Context(), opts)
	if err != nil {
		slog.Error("build session failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if cards == nil {
		cards = []cardservice.CardDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
	})
}

// RecordReview handles POST /cards/{id}/review.
func (h *Handler) RecordReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	id := chi.URLParam(r, "id")

	var req struct {
		Grade int `json:"grade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	result, err := h.svc.RecordReview(r.Context(), id, req.Grade)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("record review failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DueCards handles GET /due.
func (h *Handler) DueCards(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	due, err := h.svc.DueCards(r.Context(), limit)
	if err != nil {
		slog.Error("due cards failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if due == nil {
		due = []cardservice.DueCard{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"due": due,
	})
}
