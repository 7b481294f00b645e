package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/domain"
)

// multipartOverhead covers form boundaries and the alt field around the file.
const multipartOverhead = 64 << 10

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "upload_media")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMappedError(r.Context(), w, "upload_media", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrPayloadTooLarge, h.opts.MaxUploadBytes))
			return
		}
		writeValidationError(r.Context(), w, "upload_media", fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationError(r.Context(), w, "upload_media", errors.New("file field is required"))
		return
	}
	defer file.Close()

	media, err := h.service.UploadMedia(r.Context(), actor, file, application.UploadInput{
		FileName:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Size:         header.Size,
		AltText:      r.FormValue("alt"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "upload_media", err)
		return
	}
	h.metrics.RecordUpload(media.MIMEType, media.Size)
	writeSuccess(w, http.StatusCreated, media)
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "list_media")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.ListMedia(r.Context(), actor, domain.MediaFilter{
		MIMEPrefix: q.Get("type"),
		Page:       parseIntDefault(q.Get("page"), 1),
		PageSize:   parseIntDefault(q.Get("page_size"), 24),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_media", err)
		return
	}
	writePage(w, page)
}

func (h *Handler) getMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "get_media")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_media", err)
		return
	}
	media, err := h.service.GetMedia(r.Context(), actor, id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_media", err)
		return
	}
	writeSuccess(w, http.StatusOK, media)
}

func (h *Handler) updateMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "update_media")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_media", err)
		return
	}
	var req struct {
		AltText string `json:"alt_text"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_media", err)
		return
	}
	media, err := h.service.UpdateMediaAlt(r.Context(), actor, id, req.AltText)
	if err != nil {
		writeMappedError(r.Context(), w, "update_media", err)
		return
	}
	writeSuccess(w, http.StatusOK, media)
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r, "delete_media")
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_media", err)
		return
	}
	if err := h.service.DeleteMedia(r.Context(), actor, id); err != nil {
		writeMappedError(r.Context(), w, "delete_media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
