package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDirection reports a missing or unknown traversal direction.
var ErrDirection = errors.New("direction of message transmission not set")

// Direction is the direction in which hash values are transmitted.
type Direction string

const (
	// In transmits along the arcs as stored.
	In Direction = "in"
	// Out transmits along the transposed graph.
	Out Direction = "out"
)

// ParseDirection accepts "in" or "out", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case In, Out:
		return d, nil
	case "":
		return "", ErrDirection
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrDirection, s)
	}
}

// Orient returns g unchanged for In and its transpose for Out.
func Orient(g Graph, dir Direction) (Graph, error) {
	switch dir {
	case In:
		return g, nil
	case Out:
		return Transpose(g), nil
	case "":
		return nil, ErrDirection
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", ErrDirection, dir)
	}
}
