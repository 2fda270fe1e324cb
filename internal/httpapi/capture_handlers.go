package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"contactpilot-engine/internal/events"
	"contactpilot-engine/internal/extract"
	"contactpilot-engine/internal/review"
)

type CaptureHandler struct {
	Engine *review.Engine
	Hub    *events.Hub
}

type captureReq struct {
	Text        string `json:"text"`
	HTML        string `json:"html,omitempty"`
	SourceEmail string `json:"source_email,omitempty"`
	Context     string `json:"context,omitempty"`
}

// Run accepts one text blob from the capture surface and feeds it through
// the pipeline. Responds with the candidates that entered review this cycle.
func (h CaptureHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req captureReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	text := req.Text
	if strings.TrimSpace(text) == "" && req.HTML != "" {
		flat, err := extract.HTMLToLines(req.HTML)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_html", err.Error())
			return
		}
		text = flat
	}
	if strings.TrimSpace(text) == "" {
		WriteError(w, r, http.StatusBadRequest, "empty_capture", "text or html is required")
		return
	}

	cands, err := h.Engine.ProcessText(r.Context(), text, req.SourceEmail, req.Context)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "capture_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"detected": len(cands), "candidates": cands})
}

type cancelReq struct {
	Context string `json:"context,omitempty"`
}

// Cancel drops open reviews for a capture context (all of them when the
// context is empty). The extension calls this on navigation.
func (h CaptureHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	n := h.Engine.CancelContext(req.Context)
	writeJSON(w, map[string]any{"cancelled": n})
}
