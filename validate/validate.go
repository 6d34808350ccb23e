// Package validate checks board configuration JSON files before the server
// loads them. For every file it verifies:
//   - JSON structure and required fields
//   - board dimensions and starting tile count
//   - spawn rule and win value (powers of two)
//   - message templates
//   - reachability: the win tile fits on the board at all
//
// It backs the "validate" command.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/game2048/game/engine"
)

// requiredFields are the keys a rule set file must spell out; everything
// else has a classic default
var requiredFields = []string{"name", "description", "rows", "cols", "win_value", "messages"}

// Result captures the outcome of validating a single file.
// Errors is empty when Valid is true; Info carries the summary lines.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
	Config *engine.GameConfig
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// File loads and validates a single configuration JSON file
func File(path string) Result {
	result := Result{
		File:  filepath.Base(path),
		Valid: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	return Bytes(result.File, data)
}

// Bytes validates an in-memory rule set. name is only used for reporting.
func Bytes(name string, data []byte) Result {
	result := Result{
		File:  name,
		Valid: true,
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			result.fail("Missing required field: %s", field)
		}
	}

	// the server ignores unknown keys; here they are reported as typos
	var strict engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&strict); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if !result.Valid {
		return result
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	// Reachability: with n cells the largest tile a board can hold is the
	// biggest spawn value doubled n-1 times
	largest := MaxReachableTile(config)
	if config.WinValue > largest {
		result.fail("Unreachable win value: %d needs more than %d cells (largest possible tile is %d)",
			config.WinValue, config.Rows*config.Cols, largest)
		return result
	}

	result.Config = config
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d", config.Rows, config.Cols),
		fmt.Sprintf("✓ Starting tiles: %d", config.StartingTiles),
		fmt.Sprintf("✓ Spawn: %d (%d%%) / %d", config.Spawn.Primary, config.Spawn.PrimaryPercent, config.Spawn.Secondary),
		fmt.Sprintf("✓ Win tile: %d (largest possible %d)", config.WinValue, largest),
	)
	return result
}

// MaxReachableTile returns the largest tile value the board can ever hold
func MaxReachableTile(config *engine.GameConfig) int {
	spawn := config.Spawn.Primary
	if config.Spawn.PrimaryPercent < 100 && config.Spawn.Secondary > spawn {
		spawn = config.Spawn.Secondary
	}

	cells := config.Rows * config.Cols
	tile := spawn
	for i := 1; i < cells; i++ {
		// guard against overflow on very large boards
		if tile > math.MaxInt/2 {
			break
		}
		tile *= 2
	}
	return tile
}

// Dir validates every *.json file in dir, sorted by file name. Display names
// shared by several files are reported on each of them.
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files in %s", dir)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	byName := make(map[string][]int)
	for _, file := range files {
		result := File(file)
		if result.Config != nil {
			byName[result.Config.Name] = append(byName[result.Config.Name], len(results))
		}
		results = append(results, result)
	}

	for name, idx := range byName {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			results[i].fail("Duplicate name %q (%d files)", name, len(idx))
		}
	}

	return results, nil
}

// Report prints a concise report and returns whether every result is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}
