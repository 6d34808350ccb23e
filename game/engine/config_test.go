package engine

import (
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:          "Test Config",
		Description:   "A valid test configuration",
		Rows:          4,
		Cols:          4,
		StartingTiles: 2,
		WinValue:      2048,
		Spawn:         DefaultSpawnRule(),
		Messages: Messages{
			Welcome:     "Welcome to the test game!",
			Moved:       "Moved",
			Blocked:     "Blocked",
			Victory:     "Victory! %d reached!",
			GameOver:    "Game over! Score %d",
			AlreadyOver: "Over",
		},
	}
}

const testConfigJSON = `{
	"name": "Test Config",
	"description": "Test description",
	"rows": 5,
	"cols": 5,
	"messages": {
		"welcome": "Welcome!",
		"victory": "Victory! %d!",
		"game_over": "Game over! %d"
	}
}`

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	config := createValidConfig()
	err := ValidateGameConfig(config)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}

	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*GameConfig)
		expectedError string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"rows too small", func(c *GameConfig) { c.Rows = 1 }, "rows must be between"},
		{"rows too large", func(c *GameConfig) { c.Rows = 17 }, "rows must be between"},
		{"cols too small", func(c *GameConfig) { c.Cols = 0 }, "cols must be between"},
		{"no starting tiles", func(c *GameConfig) { c.StartingTiles = 0 }, "starting_tiles must be between"},
		{"too many starting tiles", func(c *GameConfig) { c.StartingTiles = 17 }, "starting_tiles must be between"},
		{"primary not power of two", func(c *GameConfig) { c.Spawn.Primary = 3 }, "spawn.primary must be a power of two"},
		{"secondary zero", func(c *GameConfig) { c.Spawn.Secondary = 0 }, "spawn.secondary must be a power of two"},
		{"percent too large", func(c *GameConfig) { c.Spawn.PrimaryPercent = 101 }, "primary_percent must be between"},
		{"win value not power of two", func(c *GameConfig) { c.WinValue = 1000 }, "win_value must be a power of two"},
		{"win value reachable by spawn", func(c *GameConfig) { c.WinValue = 4 }, "must be greater than the spawn values"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome is required"},
		{"victory without format", func(c *GameConfig) { c.Messages.Victory = "You win" }, "messages.victory must contain"},
		{"game over without format", func(c *GameConfig) { c.Messages.GameOver = "Bye" }, "messages.game_over must contain"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	config := &GameConfig{Name: "bare", Description: "bare", Rows: 3, Cols: 3}
	ApplyDefaults(config)

	if config.StartingTiles != DefaultStartingTiles {
		t.Errorf("Expected starting tiles %d, got %d", DefaultStartingTiles, config.StartingTiles)
	}
	if config.WinValue != DefaultWinValue {
		t.Errorf("Expected win value %d, got %d", DefaultWinValue, config.WinValue)
	}
	if config.Spawn != DefaultSpawnRule() {
		t.Errorf("Expected default spawn rule, got %+v", config.Spawn)
	}
	if config.Messages.Moved == "" || config.Messages.Blocked == "" || config.Messages.AlreadyOver == "" {
		t.Errorf("Expected optional messages to be filled, got %+v", config.Messages)
	}

	// Required format messages are never invented
	if config.Messages.Victory != "" || config.Messages.GameOver != "" {
		t.Error("Expected victory and game_over to stay empty")
	}
}

func TestParseGameConfig(t *testing.T) {
	config, err := ParseGameConfig([]byte(testConfigJSON))
	if err != nil {
		t.Fatalf("ParseGameConfig() error = %v", err)
	}
	if config.Rows != 5 || config.Cols != 5 {
		t.Errorf("Expected 5x5, got %dx%d", config.Rows, config.Cols)
	}
	if config.WinValue != DefaultWinValue || config.Spawn != DefaultSpawnRule() {
		t.Errorf("Expected defaults to be applied, got win %d spawn %+v", config.WinValue, config.Spawn)
	}

	tests := []struct {
		name string
		json string
		want string
	}{
		{"malformed", `{"name": "broken"`, "parse config"},
		{"too small", `{"name": "tiny", "description": "d", "rows": 1, "cols": 4}`, "rows must be between"},
		{"unknown spawn key", `{"name": "n", "description": "d", "rows": 4, "cols": 4, "spawn": {"primary_percentage": 50}}`, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGameConfig([]byte(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseGameConfig_SpawnPercent(t *testing.T) {
	base := `{"name": "n", "description": "d", "rows": 4, "cols": 4,
		"messages": {"welcome": "hi", "victory": "won %d", "game_over": "lost %d"},
		"spawn": %s}`

	tests := []struct {
		name  string
		spawn string
		want  SpawnRule
	}{
		{"omitted percent", `{"primary": 2, "secondary": 4}`, SpawnRule{Primary: 2, Secondary: 4, PrimaryPercent: DefaultPrimaryPercent}},
		{"explicit zero", `{"primary": 2, "secondary": 8, "primary_percent": 0}`, SpawnRule{Primary: 2, Secondary: 8, PrimaryPercent: 0}},
		{"explicit percent", `{"primary": 4, "secondary": 8, "primary_percent": 60}`, SpawnRule{Primary: 4, Secondary: 8, PrimaryPercent: 60}},
		{"empty block", `{}`, DefaultSpawnRule()},
		{"only percent", `{"primary_percent": 50}`, SpawnRule{Primary: DefaultPrimarySpawn, Secondary: DefaultSecondarySpawn, PrimaryPercent: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseGameConfig([]byte(strings.Replace(base, "%s", tt.spawn, 1)))
			if err != nil {
				t.Fatalf("ParseGameConfig() error = %v", err)
			}
			if config.Spawn != tt.want {
				t.Errorf("Spawn = %+v, want %+v", config.Spawn, tt.want)
			}
		})
	}
}
