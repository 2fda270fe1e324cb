package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"contactpilot-engine/internal/review"
)

type ReviewHandler struct {
	Engine *review.Engine
}

func (h ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Engine.UnderReview())
}

// ByPath routes /review/{email}[/action[/field]]. The verb endpoints are
// POST-only; a bare PATCH on the email edits one field.
func (h ReviewHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/review/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_email", "email is required in path")
		return
	}
	email := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodPatch:
		h.edit(w, r, email)
	case len(parts) == 2 && parts[1] == "approve" && r.Method == http.MethodPost:
		h.approve(w, r, email)
	case len(parts) == 2 && parts[1] == "reject" && r.Method == http.MethodPost:
		h.reject(w, r, email)
	case len(parts) == 3 && parts[1] == "retry" && r.Method == http.MethodPost:
		h.retry(w, r, email, parts[2])
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h ReviewHandler) approve(w http.ResponseWriter, r *http.Request, email string) {
	contact, err := h.Engine.Approve(r.Context(), email)
	if err != nil {
		writeReviewErr(w, r, err)
		return
	}
	writeJSON(w, contact)
}

func (h ReviewHandler) reject(w http.ResponseWriter, r *http.Request, email string) {
	if err := h.Engine.Reject(r.Context(), email); err != nil {
		writeReviewErr(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "email": email})
}

type editReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h ReviewHandler) edit(w http.ResponseWriter, r *http.Request, email string) {
	var req editReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	cand, err := h.Engine.Edit(email, req.Field, req.Value)
	if err != nil {
		writeReviewErr(w, r, err)
		return
	}
	writeJSON(w, cand)
}

type retryReq struct {
	Text string `json:"text,omitempty"`
}

func (h ReviewHandler) retry(w http.ResponseWriter, r *http.Request, email, field string) {
	var req retryReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	res, err := h.Engine.RetryField(email, field, req.Text)
	if err != nil {
		writeReviewErr(w, r, err)
		return
	}
	writeJSON(w, res)
}

func writeReviewErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, review.ErrNotInReview):
		WriteError(w, r, http.StatusNotFound, "not_in_review", err.Error())
	case errors.Is(err, review.ErrUnknownField):
		WriteError(w, r, http.StatusBadRequest, "unknown_field", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "review_failed", err.Error())
	}
}
