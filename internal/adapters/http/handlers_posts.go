package http

import (
	"net/http"

	"github.com/prof-ramos/asof-site/internal/application"
)

func (h *Handler) adminListPosts(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_posts")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListPosts(r.Context(), actor, application.PostListQuery{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Featured: parseBoolPtr(q.Get("featured")),
		Page:     parseIntDefault(q.Get("page"), 1),
		PageSize: parseIntDefault(q.Get("page_size"), 20),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_posts", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "create_post")
	if !ok {
		return
	}
	var in application.PostInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "create_post", err)
		return
	}
	post, err := h.service.CreatePost(r.Context(), actor, in)
	if err != nil {
		writeMappedError(r.Context(), w, "create_post", err)
		return
	}
	writeSuccess(w, http.StatusCreated, post)
}

func (h *Handler) adminGetPost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "get_post")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_post", err)
		return
	}
	post, err := h.service.GetPost(r.Context(), actor, id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "update_post")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_post", err)
		return
	}
	var in application.PostInput
	if err := decodeBody(w, r, &in); err != nil {
		writeValidationError(r.Context(), w, "update_post", err)
		return
	}
	post, err := h.service.UpdatePost(r.Context(), actor, id, in)
	if err != nil {
		writeMappedError(r.Context(), w, "update_post", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *Handler) setPostStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "set_post_status")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_post_status", err)
		return
	}
	var req application.StatusChangeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_post_status", err)
		return
	}
	post, err := h.service.SetPostStatus(r.Context(), actor, id, req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_post_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "delete_post")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_post", err)
		return
	}
	if err := h.service.DeletePost(r.Context(), actor, id); err != nil {
		writeMappedError(r.Context(), w, "delete_post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
