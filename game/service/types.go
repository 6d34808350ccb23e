package service

import (
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// Event types reported in MoveResult and BulkMoveResult
const (
	EventNewGame      = "new_game"
	EventMove         = "move"
	EventBlocked      = "blocked"
	EventMerge        = "merge"
	EventSpawn        = "spawn"
	EventVictory      = "victory"
	EventGameOver     = "game_over"
	EventNewHighScore = "new_high_score"
)

// Stop reason codes for bulk moves
const (
	StopGameOver = "game_over"
	StopVictory  = "victory"
	StopLost     = "lost"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	Turn      *engine.TurnResult `json:"turn,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	EffectiveMoves int               `json:"effective_moves"` // moves that shifted at least one tile
	BlockedMoves   int               `json:"blocked_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // victory|lost|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that was not executed
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`
	Merges     int `json:"merges"`

	// Per-move trace (only for this call)
	Turns []engine.TurnResult `json:"turns,omitempty"`

	// Final status aids
	GameOver      bool          `json:"game_over"`
	Status        engine.Status `json:"status"`
	Message       string        `json:"message,omitempty"`
	PossibleMoves []string      `json:"possible_moves,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Timestamp time.Time          `json:"timestamp"`
	Tile      *engine.PlacedTile `json:"tile,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Rows          int    `json:"rows"`
	Cols          int    `json:"cols"`
	WinValue      int    `json:"win_value"`
	StartingTiles int    `json:"starting_tiles"`
}
