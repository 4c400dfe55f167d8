// Package handlers contains the HTTP handlers for the Greenprint API.
// Handlers are methods on a single Handlers struct holding the realtime
// and notification services; database access goes through the package
// global in internal/database.
package handlers

import (
	"github.com/greenprint-app/greenprint-backend/internal/auth"
	"github.com/greenprint-app/greenprint-backend/internal/notify"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
)

type Handlers struct {
	ws     *websocket.Handler
	notify *notify.Service
	auth   *auth.Service
}

func New(ws *websocket.Handler, notifySvc *notify.Service, authSvc *auth.Service) *Handlers {
	return &Handlers{
		ws:     ws,
		notify: notifySvc,
		auth:   authSvc,
	}
}
