// Package session provides session management for the 2048 server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation and validation
//   - Optional file persistence, one JSON document per session
//   - Session cleanup and expiration
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Caller-chosen IDs may
// contain letters, digits, '-' and '_' and are matched case-insensitively.
// Because IDs become file names, anything else is rejected with
// ErrInvalidSessionID.
//
// Persistence:
//
// FilePersistence writes each session to <dir>/<id>.json through a temp file
// and rename. Sessions are restored lazily on Get or eagerly with
// LoadPersistedSessions.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", config)
package session
