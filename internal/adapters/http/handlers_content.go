package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prof-ramos/asof-site/internal/application"
)

func (h *Handler) adminListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_events")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListEvents(r.Context(), actor, q.Get("window"),
		parseIntDefault(q.Get("page"), 1),
		parseIntDefault(q.Get("page_size"), 20))
	if err != nil {
		writeMappedError(r.Context(), w, "list_events", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "create_event")
	if !ok {
		return
	}
	var in application.EventInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "create_event", err)
		return
	}
	event, err := h.service.CreateEvent(r.Context(), actor, in)
	if err != nil {
		writeMappedError(r.Context(), w, "create_event", err)
		return
	}
	writeSuccess(w, http.StatusCreated, event)
}

func (h *Handler) adminGetEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "get_event")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_event", err)
		return
	}
	event, err := h.service.GetEvent(r.Context(), actor, id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_event", err)
		return
	}
	writeSuccess(w, http.StatusOK, event)
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "update_event")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_event", err)
		return
	}
	var in application.EventInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "update_event", err)
		return
	}
	event, err := h.service.UpdateEvent(r.Context(), actor, id, in)
	if err != nil {
		writeMappedError(r.Context(), w, "update_event", err)
		return
	}
	writeSuccess(w, http.StatusOK, event)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "delete_event")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_event", err)
		return
	}
	if err := h.service.DeleteEvent(r.Context(), actor, id); err != nil {
		writeMappedError(r.Context(), w, "delete_event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminListPages(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_pages")
	if !ok {
		return
	}
	pages, err := h.service.ListPages(r.Context(), actor)
	if err != nil {
		writeMappedError(r.Context(), w, "list_pages", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"pages": pages})
}

func (h *Handler) upsertPage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "upsert_page")
	if !ok {
		return
	}
	var in application.PageInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "upsert_page", err)
		return
	}
	page, err := h.service.UpsertPage(r.Context(), actor, chi.URLParam(r, "slug"), in)
	if err != nil {
		writeMappedError(r.Context(), w, "upsert_page", err)
		return
	}
	writeSuccess(w, http.StatusOK, page)
}

func (h *Handler) createTransparency(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "create_transparency")
	if !ok {
		return
	}
	var in application.TransparencyInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "create_transparency", err)
		return
	}
	doc, err := h.service.CreateTransparencyDocument(r.Context(), actor, in)
	if err != nil {
		writeMappedError(r.Context(), w, "create_transparency", err)
		return
	}
	writeSuccess(w, http.StatusCreated, doc)
}

func (h *Handler) deleteTransparency(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "delete_transparency")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_transparency", err)
		return
	}
	if err := h.service.DeleteTransparencyDocument(r.Context(), actor, id); err != nil {
		writeMappedError(r.Context(), w, "delete_transparency", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_contact")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListContactMessages(r.Context(), actor, q.Get("status"),
		parseIntDefault(q.Get("page"), 1),
		parseIntDefault(q.Get("page_size"), 20))
	if err != nil {
		writeMappedError(r.Context(), w, "list_contact", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "get_contact")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_contact", err)
		return
	}
	msg, err := h.service.GetContactMessage(r.Context(), actor, id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_contact", err)
		return
	}
	writeSuccess(w, http.StatusOK, msg)
}

func (h *Handler) setContactStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "set_contact_status")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_contact_status", err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_contact_status", err)
		return
	}
	msg, err := h.service.SetContactStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeMappedError(r.Context(), w, "set_contact_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, msg)
}
