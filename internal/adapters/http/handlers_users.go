package http

import (
	"net/http"

	"github.com/prof-ramos/asof-site/internal/application"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_users")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListUsers(r.Context(), actor,
		parseIntDefault(q.Get("page"), 1),
		parseIntDefault(q.Get("page_size"), 50))
	if err != nil {
		writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "create_user")
	if !ok {
		return
	}
	var req application.CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_user", err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), actor, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "set_user_active")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_user_active", err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_user_active", err)
		return
	}
	if err := h.service.SetUserActive(r.Context(), actor, id, req.Active); err != nil {
		writeMappedError(r.Context(), w, "set_user_active", err)
		return
	}
	writeMessage(w, http.StatusOK, "user updated")
}

func (h *Handler) unlockUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "unlock_user")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "unlock_user", err)
		return
	}
	if err := h.service.UnlockUser(r.Context(), actor, id); err != nil {
		writeMappedError(r.Context(), w, "unlock_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "user unlocked")
}
