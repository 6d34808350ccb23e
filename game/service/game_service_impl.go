package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	highScores HighScoreTracker
	logger     *slog.Logger
	mu         sync.RWMutex
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithLogger sets the structured logger used for move and persistence logs
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHighScores persists the best score through tracker
func WithHighScores(tracker HighScoreTracker) Option {
	return func(s *gameServiceImpl) {
		s.highScores = tracker
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks up a session and refreshes its access time.
// It writes the session, so callers must hold mu for writing.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("session %s: %w: %v", sessionID, ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// seedHighScore raises the session's high score to the persisted best
func (s *gameServiceImpl) seedHighScore(ctx context.Context, sess *Session) {
	if s.highScores == nil {
		return
	}
	best, err := s.highScores.Best(ctx)
	if err != nil {
		s.logger.Warn("failed to read high score", "session", sess.ID, "error", err)
		return
	}
	sess.Engine.SetHighScore(best)
}

// offerScore persists a new best score and reports whether it was a record
func (s *gameServiceImpl) offerScore(ctx context.Context, sess *Session) bool {
	if s.highScores == nil {
		return false
	}
	improved, err := s.highScores.Offer(ctx, sess.Engine.GetScore())
	if err != nil {
		s.logger.Warn("failed to save high score", "session", sess.ID, "score", sess.Engine.GetScore(), "error", err)
		return false
	}
	return improved
}

// persist saves the session, logging instead of failing the request
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", after, "error", err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' (available: %v): %w", configName, configIDs, ErrConfigNotFound)
				}
				return nil, fmt.Errorf("config '%s', use /api/configs to list available configurations: %w", configName, ErrConfigNotFound)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.seedHighScore(ctx, sess)

	// Prefer the input configName if provided, otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", "session", sess.ID, "config", configID, "rows", config.Rows, "cols", config.Cols)

	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// getSession stamps LastAccessedAt, which sessionInfo reads under RLock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// parseDirections converts every token up front so a bad batch changes nothing
func parseDirections(tokens []string) ([]engine.Direction, error) {
	dirs := make([]engine.Direction, 0, len(tokens))
	for i, token := range tokens {
		dir, err := engine.ParseDirection(token)
		if err != nil {
			return nil, fmt.Errorf("move %d %q: %w", i+1, token, ErrInvalidDirection)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", direction, ErrInvalidDirection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      EventNewGame,
			Message:   "New game started",
			Timestamp: time.Now(),
		})
	}

	turn := sess.Engine.Move(dir)
	events = append(events, s.turnEvents(ctx, sess, turn)...)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   turn.Moved,
		GameState: state,
		Message:   state.Message,
		Events:    events,
		Turn:      &turn,
	}

	s.logger.Debug("move",
		"session", sessionID,
		"direction", dir.String(),
		"moved", turn.Moved,
		"score_delta", turn.ScoreDelta,
		"score", state.Score,
		"status", state.Status,
	)

	// Auto-save session after move
	s.persist(sessionID, "move")

	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	dirs, err := parseDirections(moves)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      EventNewGame,
			Message:   "New game started",
			Timestamp: time.Now(),
		})
	}

	result.StartScore = sess.Engine.GetScore()

	for i, dir := range dirs {
		if sess.Engine.IsGameOver() {
			result.StoppedOnMove = i + 1
			result.StoppedReason = fmt.Sprintf("game over before move %d", i+1)
			break
		}

		turn := sess.Engine.Move(dir)
		result.MovesExecuted++
		result.Turns = append(result.Turns, turn)
		result.Merges += turn.Merges
		if turn.Moved {
			result.EffectiveMoves++
		} else {
			result.BlockedMoves++
		}
		result.Events = append(result.Events, s.turnEvents(ctx, sess, turn)...)
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndScore = endState.Score
	result.ScoreDelta = endState.Score - result.StartScore
	result.GameOver = endState.GameOver
	result.Status = endState.Status
	result.Message = endState.Message
	result.PossibleMoves = endState.PossibleMoves
	result.Success = result.EffectiveMoves > 0 || len(dirs) == 0

	switch endState.Status {
	case engine.StatusWon:
		result.StopReasonCode = StopVictory
	case engine.StatusLost:
		result.StopReasonCode = StopLost
	default:
		if result.StoppedOnMove > 0 {
			result.StopReasonCode = StopGameOver
		}
	}

	s.logger.Debug("bulk move",
		"session", sessionID,
		"executed", result.MovesExecuted,
		"requested", result.RequestedMoves,
		"blocked", result.BlockedMoves,
		"score_delta", result.ScoreDelta,
		"status", result.Status,
	)

	// Auto-save session after bulk moves
	s.persist(sessionID, "bulk move")

	return result, nil
}

// turnEvents records the high score and turns one TurnResult into events
func (s *gameServiceImpl) turnEvents(ctx context.Context, sess *Session, turn engine.TurnResult) []GameEvent {
	now := time.Now()

	if !turn.Accepted {
		return []GameEvent{{Type: EventBlocked, Message: sess.Engine.GetState().Message, Timestamp: now}}
	}
	if !turn.Moved {
		return []GameEvent{{Type: EventBlocked, Message: fmt.Sprintf("Nothing moved %s", turn.Direction), Timestamp: now}}
	}

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s", turn.Direction),
		Timestamp: now,
	}}

	if turn.Merges > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("%d merge(s) for +%d points", turn.Merges, turn.ScoreDelta),
			Timestamp: now,
		})
	}

	if turn.Spawned != nil {
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d tile at (%d,%d)", turn.Spawned.Value, turn.Spawned.Row, turn.Spawned.Col),
			Timestamp: now,
			Tile:      turn.Spawned,
		})
	}

	if turn.ScoreDelta > 0 && s.offerScore(ctx, sess) {
		events = append(events, GameEvent{
			Type:      EventNewHighScore,
			Message:   fmt.Sprintf("New high score: %d", sess.Engine.GetScore()),
			Timestamp: now,
		})
	}

	switch turn.Status {
	case engine.StatusWon:
		events = append(events, GameEvent{Type: EventVictory, Message: sess.Engine.GetState().Message, Timestamp: now})
		s.logger.Info("game won", "session", sess.ID, "score", sess.Engine.GetScore())
	case engine.StatusLost:
		events = append(events, GameEvent{Type: EventGameOver, Message: sess.Engine.GetState().Message, Timestamp: now})
		s.logger.Info("game lost", "session", sess.ID, "score", sess.Engine.GetScore())
	}

	return events
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Reset()
	s.seedHighScore(ctx, sess)
	state := sess.Engine.GetState()

	// Auto-save session after reset
	s.persist(sessionID, "reset")

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	// getSession stamps LastAccessedAt, which sessionInfo reads under RLock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetHighScore returns the persisted best score, or the best across live sessions without a tracker
func (s *gameServiceImpl) GetHighScore(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := 0
	for _, sess := range s.sessions.List() {
		if hs := sess.Engine.GetHighScore(); hs > best {
			best = hs
		}
	}

	if s.highScores == nil {
		return best, nil
	}

	persisted, err := s.highScores.Best(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read high score: %w", err)
	}
	if persisted > best {
		best = persisted
	}
	return best, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of moves
	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", configName, err)
	}
	return config, nil
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
