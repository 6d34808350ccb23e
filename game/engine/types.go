package engine

// Status is the lifecycle state of a game
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"

	// Validation constants
	DefaultRows           = 4
	DefaultCols           = 4
	MinGridSize           = 2
	MaxGridSize           = 16
	DefaultStartingTiles  = 2
	DefaultWinValue       = 2048
	DefaultPrimarySpawn   = 2
	DefaultSecondarySpawn = 4
	DefaultPrimaryPercent = 80
	MaxBulkMoves          = 100
	WebSocketBufferSize   = 256
)

// IsTerminal reports whether no further moves are accepted in this status
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// Position represents row,col coordinates on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SpawnRule decides which value a freshly spawned tile gets
type SpawnRule struct {
	Primary        int `json:"primary"`
	Secondary      int `json:"secondary"`
	PrimaryPercent int `json:"primary_percent"`
}

// DefaultSpawnRule returns the classic 2 (80%) / 4 (20%) rule
func DefaultSpawnRule() SpawnRule {
	return SpawnRule{
		Primary:        DefaultPrimarySpawn,
		Secondary:      DefaultSecondarySpawn,
		PrimaryPercent: DefaultPrimaryPercent,
	}
}

// GameConfig represents a rule set loaded from JSON
type GameConfig struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Rows          int       `json:"rows"`
	Cols          int       `json:"cols"`
	StartingTiles int       `json:"starting_tiles"`
	WinValue      int       `json:"win_value"`
	Spawn         SpawnRule `json:"spawn"`
	Messages      Messages  `json:"messages"`
}

// Messages are the player-facing texts of a rule set
type Messages struct {
	Welcome     string `json:"welcome"`
	Moved       string `json:"moved"`
	Blocked     string `json:"blocked"`
	Victory     string `json:"victory"`
	GameOver    string `json:"game_over"`
	AlreadyOver string `json:"already_over"`
}

// PlacedTile is an occupied cell as seen by renderers
type PlacedTile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// GameState represents the complete, serializable game state
type GameState struct {
	Grid        [][]int            `json:"grid"`
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	Score       int                `json:"score"`
	HighScore   int                `json:"high_score"`
	Status      Status             `json:"status"`
	Won         bool               `json:"won"`
	GameOver    bool               `json:"game_over"`
	MaxTile     int                `json:"max_tile"`
	EmptyCells  int                `json:"empty_cells"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMovesCount counts the moves of the current game; reset clears it
	// while TotalMoves stays cumulative.
	CurrentMovesCount int `json:"current_moves_count"`

	// MoveHistory is only filled by Snapshot for persistence. Clients page
	// through history separately.
	MoveHistory []MoveHistoryEntry `json:"move_history,omitempty"`

	// Computed helper view (not required for core game logic)
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// MoveHistoryEntry represents a single submitted direction in the game history
type MoveHistoryEntry struct {
	Action     string      `json:"action"`
	Moved      bool        `json:"moved"`
	ScoreDelta int         `json:"score_delta"`
	Score      int         `json:"score"`
	Merges     int         `json:"merges"`
	Spawned    *PlacedTile `json:"spawned,omitempty"`
	Status     Status      `json:"status"`
	Timestamp  int64       `json:"timestamp"`
	MoveNumber int         `json:"move_number"`
}

// MoveOutcome is the result of resolving one direction on a board
type MoveOutcome struct {
	Moved      bool `json:"moved"`
	ScoreDelta int  `json:"score_delta"`
	Merges     int  `json:"merges"`
}

// TurnResult is what a submitted direction did to a game
type TurnResult struct {
	Direction  Direction   `json:"direction"`
	Accepted   bool        `json:"accepted"`
	Moved      bool        `json:"moved"`
	ScoreDelta int         `json:"score_delta"`
	Merges     int         `json:"merges"`
	Spawned    *PlacedTile `json:"spawned,omitempty"`
	Status     Status      `json:"status"`
}
