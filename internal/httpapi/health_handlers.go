package httpapi

import (
	"encoding/json"
	"net/http"

	"contactpilot-engine/internal/review"
)

type HealthHandler struct {
	Engine *review.Engine
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":           true,
		"under_review": len(h.Engine.UnderReview()),
	})
}
