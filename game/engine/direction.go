package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned for direction tokens outside up/down/left/right
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four sliding directions
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// AllDirections lists the directions in the order possible moves are reported
var AllDirections = []Direction{Up, Down, Left, Right}

// traversal describes how one direction walks the grid. Tiles closest to the
// target edge must be resolved first, otherwise multi-step slides miscompute.
type traversal struct {
	dRow, dCol int
	rowsDesc   bool
	colsDesc   bool
}

var traversals = map[Direction]traversal{
	Left:  {dRow: 0, dCol: -1},
	Right: {dRow: 0, dCol: 1, colsDesc: true},
	Up:    {dRow: -1, dCol: 0},
	Down:  {dRow: 1, dCol: 0, rowsDesc: true},
}

var directionNames = map[Direction]string{
	Left:  "left",
	Right: "right",
	Up:    "up",
	Down:  "down",
}

var directionAliases = map[string]Direction{
	"left": Left, "a": Left, "arrowleft": Left,
	"right": Right, "d": Right, "arrowright": Right,
	"up": Up, "w": Up, "arrowup": Up,
	"down": Down, "s": Down, "arrowdown": Down,
}

// ParseDirection converts an input token into a Direction.
// Tokens are case-insensitive; WASD and arrow key names are accepted.
func ParseDirection(token string) (Direction, error) {
	dir, ok := directionAliases[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, token)
	}
	return dir, nil
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	_, ok := traversals[d]
	return ok
}

// String returns the lowercase direction name
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MarshalJSON encodes the direction by name
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a direction name
func (d *Direction) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseDirection(token)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
