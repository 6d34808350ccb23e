// Package api provides the HTTP REST API for the 2048 game server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"}, body optional)
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several sessions at once (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Session details
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board and score
//   - POST /api/sessions/{id}/move - {"direction": "left", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["left", "up"], "reset": false}
//   - POST /api/sessions/{id}/reset - Start a new game in the session
//   - GET /api/sessions/{id}/history - Paginated move history (?page=1&limit=20&order=desc)
//   - GET /api/highscore - Best score across all games
//
// Configuration:
//   - GET /api/configs - List board configurations
//   - GET /api/configs/{name} - One configuration
//   - POST /api/configs - Save a configuration (?id=custom, otherwise derived from the name)
//
// Directions accept up/down/left/right, WASD letters and arrow key names.
//
// Errors are returned as JSON with a matching status code:
//
//	{"error": "session ab12: session not found"}
//
// Invalid directions and configurations map to 400, unknown sessions and
// configurations to 404, duplicate sessions to 409.
//
// Every successful move, bulk move and reset is pushed to WebSocket clients
// of the session (GET /ws?session={id}).
package api
