// Package engine provides the core game logic for 2048.
//
// The engine package implements the game mechanics including:
//   - Tiles that slide toward one edge and merge at most once per move
//   - Random spawning of a new tile after every effective move
//   - Score, high score and the playing/won/lost status
//   - Configuration loading and validation
//
// Core Types:
//
// Tile is a value with a per-move merge flag. Board is a rows x cols grid of
// cells and owns the slide and merge algorithm. The Engine interface defines
// the game session contract, implemented by GameEngine. GameState is the
// serializable snapshot used by persistence and every transport.
//
// Usage:
//
//	config, err := engine.ParseGameConfig(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := gameEngine.Move(engine.Left)
//	state := gameEngine.GetState()
//
// The package imports no networking, storage or rendering code. Callers
// translate their input into a Direction and render GameState however they like.
package engine
