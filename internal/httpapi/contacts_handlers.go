package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contactpilot-engine/internal/backend"
	"contactpilot-engine/internal/domain"
	"contactpilot-engine/internal/events"
	"contactpilot-engine/internal/store"
)

type ContactsHandler struct {
	Contacts store.Contacts
	Rejected store.Rejected
	Hub      *events.Hub
	Pusher   *backend.Pusher
}

func (h ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		limit, _ = strconv.Atoi(s)
	}
	contacts, err := h.Contacts.List(r.Context(), store.ListOpts{
		Status: q.Get("status"),
		Limit:  limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, contacts)
}

// ByPath routes /contacts/{email}[/promote]. PATCH on the email sets or
// clears the follow-up date.
func (h ContactsHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/contacts/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_email", "email is required in path")
		return
	}
	email := domain.NormalizeEmail(parts[0])

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, email)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, r, email)
	case len(parts) == 1 && r.Method == http.MethodPatch:
		h.setFollowUp(w, r, email)
	case len(parts) == 2 && parts[1] == "promote" && r.Method == http.MethodPost:
		h.promote(w, r, email)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h ContactsHandler) get(w http.ResponseWriter, r *http.Request, email string) {
	c, err := h.Contacts.Get(r.Context(), email)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	if c == nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "no contact with that email")
		return
	}
	writeJSON(w, c)
}

func (h ContactsHandler) delete(w http.ResponseWriter, r *http.Request, email string) {
	if err := h.Contacts.Delete(r.Context(), email); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, "contact_deleted", 1,
		"contact deleted: "+email, map[string]any{"email": email}))
	writeJSON(w, map[string]any{"ok": true, "email": email})
}

type followUpReq struct {
	FollowUpAt *time.Time `json:"followUpAt"`
}

func (h ContactsHandler) setFollowUp(w http.ResponseWriter, r *http.Request, email string) {
	var req followUpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c, err := h.Contacts.Get(r.Context(), email)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	if c == nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "no contact with that email")
		return
	}

	if err := h.Contacts.SetFollowUp(r.Context(), email, req.FollowUpAt); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "followup_failed", err.Error())
		return
	}
	c.FollowUpAt = req.FollowUpAt
	writeJSON(w, c)
}

// promote flips a pending contact to approved and queues it for sync. An
// explicit promotion also clears any earlier rejection of the address.
func (h ContactsHandler) promote(w http.ResponseWriter, r *http.Request, email string) {
	if err := h.Contacts.Promote(r.Context(), email, time.Now().UTC()); err != nil {
		WriteError(w, r, http.StatusNotFound, "promote_failed", err.Error())
		return
	}
	if err := h.Rejected.Remove(r.Context(), email); err != nil {
		log.Printf("[httpapi] clearing rejected entry for %s: %v", email, err)
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, "contact_promoted", 1,
		"contact approved: "+email, map[string]any{"email": email}))

	if h.Pusher != nil {
		go func() {
			ctx, cancel := contextWithPushTimeout()
			defer cancel()
			if _, err := h.Pusher.PushOnce(ctx); err != nil {
				log.Printf("[httpapi] push after promote: %v", err)
			}
		}()
	}

	c, err := h.Contacts.Get(r.Context(), email)
	if err != nil || c == nil {
		writeJSON(w, map[string]any{"ok": true, "email": email})
		return
	}
	writeJSON(w, c)
}
