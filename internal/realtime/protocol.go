package realtime

import "encoding/json"

// Request is a client->server command frame. The id correlates the reply;
// clients without interest in the result may omit it.
type Request struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Response is the reply to a Request, matched by id.
type Response struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Push is a server-initiated event. It carries no correlation id.
type Push struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Push event names sent to clients.
const (
	PushUpdateProfile   = "update profile"
	PushUpdateWatchlist = "update watchlist"
	PushNewInvitation   = "new invitation"
)
