package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	Status() Status
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetHighScore() int
	SetHighScore(score int)

	// Movement operations
	Move(direction Direction) TurnResult
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction
	GetBoard() *Board

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
	Snapshot() *GameState
}

// GameEngine implements the Engine interface. It owns one board and the
// score, high score and status of the game played on it.
type GameEngine struct {
	config *GameConfig
	board  *Board
	rng    *rand.Rand

	score     int
	highScore int
	status    Status
	message   string

	moveHistory  []MoveHistoryEntry
	totalMoves   int
	currentMoves int
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithRand(config, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand creates a game engine that draws spawns from rng
func NewEngineWithRand(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:       config,
		rng:          rng,
		moveHistory:  []MoveHistoryEntry{},
	}
	engine.newGame()

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic 4x4 rules
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return engine
}

// newGame clears the board and score and spawns the starting tiles
func (e *GameEngine) newGame() {
	e.board = NewBoard(e.config.Rows, e.config.Cols)
	e.score = 0
	e.status = StatusPlaying
	e.message = e.config.Messages.Welcome

	for i := 0; i < e.config.StartingTiles; i++ {
		e.board.SpawnRandom(e.rng, e.config.Spawn)
	}
}

// GetState returns the current game state without move history
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		Grid:              e.board.Values(),
		Rows:              e.board.Rows(),
		Cols:              e.board.Cols(),
		Score:             e.score,
		HighScore:         e.highScore,
		Status:            e.status,
		Won:               e.status == StatusWon,
		GameOver:          e.status.IsTerminal(),
		MaxTile:           e.board.MaxValue(),
		EmptyCells:        e.board.EmptyCount(),
		Message:           e.message,
		ConfigName:        e.config.Name,
		TotalMoves:        e.totalMoves,
		CurrentMovesCount: e.currentMoves,
	}

	for _, dir := range e.GetPossibleMoves() {
		state.PossibleMoves = append(state.PossibleMoves, dir.String())
	}

	return state
}

// Snapshot returns GetState plus the cumulative move history, for persistence
func (e *GameEngine) Snapshot() *GameState {
	state := e.GetState()
	state.MoveHistory = append([]MoveHistoryEntry{}, e.moveHistory...)
	return state
}

// SetState restores the game from a snapshot (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Grid) != e.config.Rows {
		return fmt.Errorf("state has %d rows, config %q expects %d", len(state.Grid), e.config.Name, e.config.Rows)
	}

	board, err := NewBoardFromValues(state.Grid)
	if err != nil {
		return fmt.Errorf("invalid state grid: %w", err)
	}
	if board.Cols() != e.config.Cols {
		return fmt.Errorf("state has %d columns, config %q expects %d", board.Cols(), e.config.Name, e.config.Cols)
	}
	if state.Score < 0 {
		return fmt.Errorf("state score cannot be negative, got %d", state.Score)
	}

	status := state.Status
	switch status {
	case "":
		status = StatusPlaying
	case StatusPlaying, StatusWon, StatusLost:
	default:
		return fmt.Errorf("unknown status %q", state.Status)
	}

	e.board = board
	e.score = state.Score
	e.status = status
	e.message = state.Message
	if state.HighScore > e.highScore {
		e.highScore = state.HighScore
	}
	if e.score > e.highScore {
		e.highScore = e.score
	}
	e.moveHistory = append([]MoveHistoryEntry{}, state.MoveHistory...)
	e.totalMoves = max(state.TotalMoves, len(e.moveHistory))
	e.currentMoves = min(max(state.CurrentMovesCount, 0), e.totalMoves)

	return nil
}

// Reset starts a new game. Cumulative history and the high score survive.
func (e *GameEngine) Reset() *GameState {
	e.newGame()
	e.currentMoves = 0
	return e.GetState()
}

// Status returns the game status
func (e *GameEngine) Status() Status {
	return e.status
}

// IsGameOver returns whether the game has reached won or lost
func (e *GameEngine) IsGameOver() bool {
	return e.status.IsTerminal()
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.status == StatusWon
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetHighScore returns the best score known to this game
func (e *GameEngine) GetHighScore() int {
	return e.highScore
}

// SetHighScore seeds the high score, typically from persistence. It never lowers it.
func (e *GameEngine) SetHighScore(score int) {
	if score > e.highScore {
		e.highScore = score
	}
}

// Move submits one direction.
//
// Invalid directions and moves on a finished game change nothing. A move that
// shifts at least one tile adds its score delta, spawns a tile and then checks
// win before loss, so a winning move on a deadlocked board still wins.
func (e *GameEngine) Move(direction Direction) TurnResult {
	result := TurnResult{Direction: direction, Status: e.status}

	if !direction.Valid() {
		e.message = fmt.Sprintf("Unknown direction %s", direction)
		return result
	}

	if e.status.IsTerminal() {
		e.message = e.config.Messages.AlreadyOver
		e.addMoveToHistory(result)
		return result
	}

	result.Accepted = true
	outcome := e.board.ResolveMove(direction)
	result.Moved = outcome.Moved
	result.ScoreDelta = outcome.ScoreDelta
	result.Merges = outcome.Merges

	if !outcome.Moved {
		e.message = formatMessage(e.config.Messages.Blocked, direction.String())
		e.addMoveToHistory(result)
		return result
	}

	e.score += outcome.ScoreDelta
	if e.score > e.highScore {
		e.highScore = e.score
	}

	if pos, value, ok := e.board.SpawnRandom(e.rng, e.config.Spawn); ok {
		result.Spawned = &PlacedTile{Row: pos.Row, Col: pos.Col, Value: value}
	}

	e.message = formatMessage(e.config.Messages.Moved, direction.String())
	switch {
	case e.board.HasWinningTile(e.config.WinValue):
		e.status = StatusWon
		e.message = fmt.Sprintf(e.config.Messages.Victory, e.config.WinValue)
	case e.board.IsTerminal():
		e.status = StatusLost
		e.message = fmt.Sprintf(e.config.Messages.GameOver, e.score)
	}

	result.Status = e.status
	e.addMoveToHistory(result)
	return result
}

// CanMove checks whether the direction would shift any tile
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.status.IsTerminal() {
		return false
	}
	return e.board.Clone().ResolveMove(direction).Moved
}

// GetPossibleMoves returns all directions that would shift at least one tile
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range AllDirections {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetBoard returns a copy of the board for read-only use
func (e *GameEngine) GetBoard() *Board {
	return e.board.Clone()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.Reset()
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.moveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.moveHistory) == 0 {
		return nil
	}
	return &e.moveHistory[len(e.moveHistory)-1]
}

// BulkMove submits directions in sequence until the game ends
func (e *GameEngine) BulkMove(directions []Direction) []TurnResult {
	results := make([]TurnResult, 0, len(directions))

	for _, direction := range directions {
		if e.IsGameOver() {
			break
		}
		results = append(results, e.Move(direction))
	}

	return results
}

// addMoveToHistory appends a move to the cumulative and current-game histories
func (e *GameEngine) addMoveToHistory(result TurnResult) {
	entry := MoveHistoryEntry{
		Action:     result.Direction.String(),
		Moved:      result.Moved,
		ScoreDelta: result.ScoreDelta,
		Score:      e.score,
		Merges:     result.Merges,
		Spawned:    result.Spawned,
		Status:     e.status,
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.totalMoves + 1,
	}
	e.moveHistory = append(e.moveHistory, entry)
	e.totalMoves++
	e.currentMoves++
}

// formatMessage fills a %s placeholder when the template has one
func formatMessage(template, value string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, value)
	}
	return template
}
