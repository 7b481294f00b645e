package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prof-ramos/asof-site/internal/application"
)

// apiResponse is the single envelope of every JSON answer. Success bodies carry
// data or message; errors carry code and message.
type apiResponse struct {
	Status  string    `json:"status"`
	Data    any       `json:"data,omitempty"`
	Meta    *pageMeta `json:"meta,omitempty"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

type pageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"has_more"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, apiResponse{Status: "success", Data: data})
}

// writePage lists the items under data and the paging state under meta.
// X-Total-Count mirrors meta.total for clients that only read headers.
func writePage[T any](w http.ResponseWriter, page application.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))
	writeJSON(w, http.StatusOK, apiResponse{
		Status: "success",
		Data:   items,
		Meta: &pageMeta{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    page.Total,
			HasMore:  page.HasMore,
		},
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiResponse{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiResponse{Status: "error", Code: code, Message: message})
}
