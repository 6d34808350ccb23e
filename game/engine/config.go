package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultGameConfig returns the classic 4x4 rule set
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:          "classic",
		Description:   "Classic 2048 on a 4x4 board",
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		StartingTiles: DefaultStartingTiles,
		WinValue:      DefaultWinValue,
		Spawn:         DefaultSpawnRule(),
		Messages: Messages{
			Welcome:     "Welcome to 2048! Join the tiles and reach 2048.",
			Moved:       "Moved %s",
			Blocked:     "Nothing moves %s",
			Victory:     "You win! You reached %d!",
			GameOver:    "Game over! Final score: %d",
			AlreadyOver: "The game is over. Start a new game to keep playing.",
		},
	}
}

// ApplyDefaults fills zero-valued optional fields with the classic values
func ApplyDefaults(config *GameConfig) {
	if config.StartingTiles == 0 {
		config.StartingTiles = DefaultStartingTiles
	}
	if config.WinValue == 0 {
		config.WinValue = DefaultWinValue
	}
	if config.Spawn == (SpawnRule{}) {
		config.Spawn = DefaultSpawnRule()
	}
	if config.Spawn.Primary == 0 {
		config.Spawn.Primary = DefaultPrimarySpawn
	}
	if config.Spawn.Secondary == 0 {
		config.Spawn.Secondary = DefaultSecondarySpawn
	}

	defaults := DefaultGameConfig().Messages
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = defaults.Welcome
	}
	if config.Messages.Moved == "" {
		config.Messages.Moved = defaults.Moved
	}
	if config.Messages.Blocked == "" {
		config.Messages.Blocked = defaults.Blocked
	}
	if config.Messages.AlreadyOver == "" {
		config.Messages.AlreadyOver = defaults.AlreadyOver
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Cols)
	}
	if config.StartingTiles < 1 || config.StartingTiles > config.Rows*config.Cols {
		return fmt.Errorf("config validation: starting_tiles must be between 1 and %d, got %d", config.Rows*config.Cols, config.StartingTiles)
	}

	// Validate spawn rule
	if !isPowerOfTwo(config.Spawn.Primary) {
		return fmt.Errorf("config validation: spawn.primary must be a power of two, got %d", config.Spawn.Primary)
	}
	if !isPowerOfTwo(config.Spawn.Secondary) {
		return fmt.Errorf("config validation: spawn.secondary must be a power of two, got %d", config.Spawn.Secondary)
	}
	if config.Spawn.PrimaryPercent < 0 || config.Spawn.PrimaryPercent > 100 {
		return fmt.Errorf("config validation: spawn.primary_percent must be between 0 and 100, got %d", config.Spawn.PrimaryPercent)
	}

	// A win value at or below a spawn value would be won by the first spawn
	if !isPowerOfTwo(config.WinValue) {
		return fmt.Errorf("config validation: win_value must be a power of two, got %d", config.WinValue)
	}
	if config.WinValue <= config.Spawn.Primary || config.WinValue <= config.Spawn.Secondary {
		return fmt.Errorf("config validation: win_value %d must be greater than the spawn values %d and %d",
			config.WinValue, config.Spawn.Primary, config.Spawn.Secondary)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the win value")
	}
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for the final score")
	}

	return nil
}

// ParseGameConfig decodes, defaults and validates a JSON rule set
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(&config)

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// UnmarshalJSON decodes a spawn block strictly. An omitted primary_percent
// means the classic split, while an explicit 0 always spawns the secondary.
func (r *SpawnRule) UnmarshalJSON(data []byte) error {
	type plain SpawnRule
	rule := plain{PrimaryPercent: DefaultPrimaryPercent}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&rule); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}

	*r = SpawnRule(rule)
	return nil
}
