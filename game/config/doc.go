// Package config provides rule set management for the 2048 server.
//
// Rule sets are JSON files in the configs directory. Each one defines the
// board size, the number of starting tiles, the win value, the spawn rule and
// the player-facing messages. Optional fields fall back to the classic rules
// before validation.
//
// Available Configurations:
//   - classic: 4x4 board, first to 2048
//   - big: 6x6 board, first to 4096
//   - mini: 3x3 board, first to 256
//   - practice: 4x4 board where every spawn is a 1024
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("big")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
