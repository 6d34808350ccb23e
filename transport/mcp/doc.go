// Package mcp exposes the 2048 game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a REST API
// request and the JSON answer is rendered as plain text, with the board drawn
// as a fixed-width grid ("." marks an empty cell).
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, score, best score and possible moves
//   - move: one direction
//   - bulk_move: up to 100 directions, stops on victory or loss
//   - new_game: fresh board in the same session
//   - move_history: paginated history
//   - list_configs, high_score, game_instructions
//
// API errors are returned as tool results flagged IsError, never as Go errors,
// so agents see the message.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode: feed JSON-RPC bodies to the same server
//	client.GetMCPServer().HandleMessage(ctx, body)
package mcp
