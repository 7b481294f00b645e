package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/domain"
)

func (h *Handler) listPublishedPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListPublishedPosts(r.Context(), application.PostListQuery{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Featured: parseBoolPtr(q.Get("featured")),
		Page:     parseIntDefault(q.Get("page"), 1),
		PageSize: parseIntDefault(q.Get("page_size"), 10),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_published_posts", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) getPublishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublishedPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_published_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_categories", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *Handler) listPublicEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window := q.Get("window")
	if window == "" {
		window = string(domain.EventWindowUpcoming)
	}
	page, err := h.service.ListPublicEvents(r.Context(), window,
		parseIntDefault(q.Get("page"), 1),
		parseIntDefault(q.Get("page_size"), 10))
	if err != nil {
		writeMappedError(r.Context(), w, "list_public_events", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) getPublicEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetPublicEvent(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_public_event", err)
		return
	}
	writeSuccess(w, http.StatusOK, event)
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.GetPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_page", err)
		return
	}
	writeSuccess(w, http.StatusOK, page)
}

func (h *Handler) listTransparency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year := 0
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeValidationError(r.Context(), w, "list_transparency", fmt.Errorf("invalid year %q", raw))
			return
		}
		year = parsed
	}
	docs, err := h.service.ListTransparencyDocuments(r.Context(), year, q.Get("category"))
	if err != nil {
		writeMappedError(r.Context(), w, "list_transparency", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) listTransparencyYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.ListTransparencyYears(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_transparency_years", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"years": years})
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req application.ContactRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "submit_contact", err)
		return
	}
	req.IPAddress = h.clientIP(r)
	if err := h.service.SubmitContact(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "submit_contact", err)
		return
	}
	writeMessage(w, http.StatusAccepted, "message received")
}
