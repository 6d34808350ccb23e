// Command autoplay plays 2048 against a running game server through the REST
// API. Each attempt resets the session and moves until the game is won or
// lost; the run stops at the first victory.
//
// The session ID is remembered in .session so later runs keep playing the same
// session (and feed the same high score).
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/game2048/game/engine"
)

const sessionFile = ".session"

// ErrNoVictory is returned when every attempt ended without reaching the win tile
var ErrNoVictory = errors.New("no victory")

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play 2048 against a game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("GAME2048_URL")},
			&cli.StringFlag{Name: "config", Usage: "board configuration ID for new sessions (default classic)"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "maximum moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "maximum attempts before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between moves (0 = no delay)"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("v") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := NewClient(cmd.String("url"))
	logger.Info("connecting to game server", "url", cmd.String("url"))

	savedID := cmd.String("continue")
	if savedID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	rule, err := openSession(ctx, client, savedID, cmd.String("config"), logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
		logger.Warn("failed to save session ID", "error", err)
	}

	summary, err := play(ctx, client, NewStrategy(rule), playOptions{
		MaxMoves:    cmd.Int("max-moves"),
		MaxAttempts: cmd.Int("max-attempts"),
		Delay:       cmd.Duration("delay"),
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("finished",
		"session", client.SessionID(),
		"attempts", summary.Attempts,
		"best_score", summary.BestScore,
		"best_tile", summary.BestTile,
		"won", summary.Won,
	)
	if !summary.Won {
		return fmt.Errorf("%w after %d attempts", ErrNoVictory, summary.Attempts)
	}
	return nil
}

// openSession resumes savedID when it still exists, otherwise creates a new
// session. It returns the spawn rule of the session's board.
func openSession(ctx context.Context, client *Client, savedID, configID string, logger *slog.Logger) (engine.SpawnRule, error) {
	if savedID != "" {
		client.UseSession(savedID)
		session, err := client.GetSession(ctx)
		if err == nil {
			logger.Info("resumed session", "session", session.ID, "config", session.ConfigName)
			return spawnRuleOf(session.GameConfig), nil
		}
		logger.Warn("failed to resume session (may be expired), creating a new one", "session", savedID, "error", err)
	}

	session, err := client.CreateSession(ctx, configID)
	if err != nil {
		return engine.SpawnRule{}, err
	}
	logger.Info("session created", "session", session.ID, "config", session.ConfigName)
	return spawnRuleOf(session.GameConfig), nil
}

func spawnRuleOf(config *engine.GameConfig) engine.SpawnRule {
	if config == nil {
		return engine.DefaultSpawnRule()
	}
	return config.Spawn
}

type playOptions struct {
	MaxMoves    int
	MaxAttempts int
	Delay       time.Duration
}

type playSummary struct {
	Attempts  int
	Won       bool
	BestScore int
	BestTile  int
}

// play runs attempts until one is won, MaxAttempts is reached or ctx is done
func play(ctx context.Context, client *Client, strategy *Strategy, opts playOptions, logger *slog.Logger) (playSummary, error) {
	var summary playSummary

	for summary.Attempts < opts.MaxAttempts {
		summary.Attempts++

		state, err := client.Reset(ctx)
		if err != nil {
			return summary, err
		}
		logger.Info("attempt started", "attempt", summary.Attempts, "of", opts.MaxAttempts)

		moves := 0
		for !state.Status.IsTerminal() && moves < opts.MaxMoves {
			dir, ok := strategy.NextMove(state.Grid)
			if !ok {
				logger.Warn("no valid moves available")
				break
			}

			result, err := client.Move(ctx, dir)
			if err != nil {
				return summary, err
			}
			if result.GameState != nil {
				state = result.GameState
			}
			moves++

			if moves%100 == 0 {
				logger.Debug("progress", "moves", moves, "score", state.Score, "max_tile", state.MaxTile)
			}

			if opts.Delay > 0 {
				select {
				case <-ctx.Done():
					return summary, ctx.Err()
				case <-time.After(opts.Delay):
				}
			}
		}

		summary.BestScore = max(summary.BestScore, state.Score)
		summary.BestTile = max(summary.BestTile, state.MaxTile)
		logger.Info("attempt finished",
			"attempt", summary.Attempts,
			"moves", moves,
			"score", state.Score,
			"max_tile", state.MaxTile,
			"status", state.Status,
		)

		if state.Won {
			summary.Won = true
			logger.Info("🎉 VICTORY!", "attempt", summary.Attempts, "moves", moves)
			return summary, nil
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	return summary, nil
}
