package httpapi

import (
	"sync/atomic"

	"contactpilot-engine/internal/backend"
	"contactpilot-engine/internal/config"
	"contactpilot-engine/internal/events"
	"contactpilot-engine/internal/review"
	"contactpilot-engine/internal/store"
)

type Deps struct {
	Engine   *review.Engine
	Contacts store.Contacts
	Rejected store.Rejected

	Hub *events.Hub

	// CfgVal stores config.Config; handlers always load a fresh snapshot.
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Pusher is nil when backend sync is disabled.
	Pusher *backend.Pusher
}
