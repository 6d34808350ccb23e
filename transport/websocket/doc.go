// Package websocket pushes live game updates to browsers watching a session.
//
// A single Hub tracks clients per session ID. Each client connection gets a
// read pump (keep-alive only, incoming frames are ignored) and a write pump
// that also sends pings.
//
// Message Protocol:
//
// Outgoing frames are JSON:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "victory", "data": {...}}
//
// state_update is sent after every move, bulk move and reset. victory,
// game_over and new_game are sent as events when they happen.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
