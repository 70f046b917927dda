package websocket

import (
	"log"
	"net/http"

	ws "github.com/coder/websocket"
)

// Identity resolves the authenticated member behind a request. ok is
// false when the request is unauthenticated or the member has no family
// yet; the upgrade is refused in both cases.
type Identity func(r *http.Request) (familyCode, userUID string, ok bool)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as family-scoped Hub clients.
func HandleWebSocket(hub *Hub, identity Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyCode, userUID, ok := identity(r)
		if !ok {
			http.Error(w, "family membership required", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, familyCode, userUID)
		client.Run(r.Context())
	}
}
