package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/game2048/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:          "Test Config",
		Description:   "Test configuration",
		Rows:          4,
		Cols:          4,
		StartingTiles: 2,
		WinValue:      2048,
		Spawn:         engine.DefaultSpawnRule(),
		Messages: engine.Messages{
			Welcome:     "Welcome!",
			Moved:       "Moved %s",
			Blocked:     "Blocked %s",
			Victory:     "Victory! %d reached!",
			GameOver:    "Game over! Score %d",
			AlreadyOver: "Over",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic to be the default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed even without config files, got error: %v", err)
		}

		// Should fall back to the built-in rules
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Rows != engine.DefaultRows || defaultConfig.WinValue != engine.DefaultWinValue {
			t.Errorf("Expected built-in classic rules, got %+v", defaultConfig)
		}
	})

	t.Run("first config when classic is absent", func(t *testing.T) {
		dir := createTestConfigDir(t)

		big := createValidConfig()
		big.Name = "Big"
		big.Rows, big.Cols = 6, 6
		writeConfigFile(t, dir, "big", big)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Big" {
			t.Errorf("Expected Big as default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)

	practice := createValidConfig()
	practice.Name = "Practice"
	practice.Spawn = engine.SpawnRule{Primary: 1024, Secondary: 1024, PrimaryPercent: 100}
	writeConfigFile(t, dir, "practice", practice)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("practice")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Practice" {
			t.Errorf("Expected config name 'Practice', got '%s'", config.Name)
		}
		if config.Spawn.Primary != 1024 {
			t.Errorf("Expected primary spawn 1024, got %d", config.Spawn.Primary)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("practice.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Practice" {
			t.Errorf("Expected config name 'Practice', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("practice")
		config2, err := manager.LoadConfig("practice")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`) // Missing required fields
		err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644)
		if err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err = manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644)
		if err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err = manager.LoadConfig("malformed")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for malformed JSON, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)

	configs := []struct {
		filename string
		name     string
		rows     int
	}{
		{"classic", "Classic", 4},
		{"big", "Big", 6},
		{"mini", "Mini", 3},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		config.Rows, config.Cols = cfg.rows, cfg.rows
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Non-JSON and invalid files are ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 3 {
		t.Fatalf("Expected 3 configs, got %d", len(configList))
	}

	// Sorted by config ID
	if configList[0].ConfigID != "big" || configList[1].ConfigID != "classic" || configList[2].ConfigID != "mini" {
		t.Errorf("Expected configs sorted by id, got %s, %s, %s", configList[0].ConfigID, configList[1].ConfigID, configList[2].ConfigID)
	}
	if configList[0].Rows != 6 || configList[0].Cols != 6 {
		t.Errorf("Expected big to be 6x6, got %dx%d", configList[0].Rows, configList[0].Cols)
	}
	if configList[1].WinValue != 2048 {
		t.Errorf("Expected win value 2048, got %d", configList[1].WinValue)
	}
}

func TestManager_ValidateAll(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "classic", createValidConfig())
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "x", "rows": 99}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	results, err := manager.ValidateAll()
	if err != nil {
		t.Fatalf("Failed to validate configs: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	for _, result := range results {
		switch result.Filename {
		case "classic.json":
			if result.Err != nil {
				t.Errorf("Expected classic to be valid, got %v", result.Err)
			}
		case "broken.json":
			if !errors.Is(result.Err, ErrInvalidConfig) {
				t.Errorf("Expected broken to be invalid, got %v", result.Err)
			}
		}
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	config := createValidConfig()
	config.Name = "Changeable"
	config.WinValue = 1024
	writeConfigFile(t, dir, "classic", config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.WinValue != 1024 {
		t.Errorf("Expected initial win value 1024, got %d", loaded.WinValue)
	}

	// Modify config file
	config.WinValue = 4096
	writeConfigFile(t, dir, "changeable", config)

	err = manager.ReloadConfig("changeable")
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.WinValue != 4096 {
		t.Errorf("Expected reloaded win value 4096, got %d", reloaded.WinValue)
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "classic", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config", func(t *testing.T) {
		if err := manager.ValidateConfig(createValidConfig()); err != nil {
			t.Errorf("Expected valid config to pass validation: %v", err)
		}
	})

	t.Run("invalid config - missing name", func(t *testing.T) {
		config := createValidConfig()
		config.Name = ""
		if err := manager.ValidateConfig(config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("invalid config - grid too small", func(t *testing.T) {
		config := createValidConfig()
		config.Rows = 1
		if err := manager.ValidateConfig(config); err == nil {
			t.Error("Expected error for invalid grid size")
		}
	})
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	manager.RefreshCache()
	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Name != "Saved" {
		t.Errorf("Expected Saved, got %q", loaded.Name)
	}

	bad := createValidConfig()
	bad.WinValue = 3
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	for _, id := range []string{"../escape", "sub/dir", ".hidden", ""} {
		if err := manager.SaveConfig(id, createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for id %q, got %v", id, err)
		}
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := manager.LoadConfig(fmt.Sprintf("config%d", (id%5)+1))
			if err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

// Count is a test-only helper reporting the cache size
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
