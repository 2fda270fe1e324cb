package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Capture
	cph := CaptureHandler{Engine: d.Engine, Hub: d.Hub}
	mux.HandleFunc("/capture", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: cph.Run,
	}))
	mux.HandleFunc("/capture/cancel", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: cph.Cancel,
	}))

	// Review
	rh := ReviewHandler{Engine: d.Engine}
	mux.HandleFunc("/review", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/review/", rh.ByPath) // PATCH /review/{email}, POST /review/{email}/approve|reject|retry/{field}

	// Contacts
	cth := ContactsHandler{Contacts: d.Contacts, Rejected: d.Rejected, Hub: d.Hub, Pusher: d.Pusher}
	mux.HandleFunc("/contacts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cth.List,
	}))
	mux.HandleFunc("/contacts/", cth.ByPath) // GET|DELETE|PATCH /contacts/{email}, POST /contacts/{email}/promote

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))
	mux.HandleFunc("/api/secrets/backend", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetBackendToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{Engine: d.Engine}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
