package client

import (
	"net/http"

	"tailscale.com/tsweb"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/evaluation"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/httputil"
)

type statusResponse struct {
	Session string             `json:"session"`
	Server  string             `json:"server"`
	State   string             `json:"state"`
	Metrics evaluation.Metrics `json:"metrics"`
}

// AttachAdminRoutes mounts debugging endpoints under /debug/ on mux. They are
// reachable from localhost only.
func (c *Client) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KVFunc("Client state", func() any { return c.State().String() })
	debug.KVFunc("Session", func() any { return c.session })
	debug.KVFunc("Fitness", func() any { return c.Metrics().Fitness })

	debug.HandleSilent("client", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, statusResponse{
			Session: c.session,
			Server:  c.cfg.Address(),
			State:   c.State().String(),
			Metrics: c.Metrics(),
		})
	}))

	debug.HandleSilent("client-stop", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w, http.MethodPost)
			return
		}
		c.Stop()
		httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"state": c.State().String()})
	}))
}
