package imposition

import (
	"fmt"
	"strings"
)

// Binding selects which edge of the folded booklet is bound.
type Binding int

const (
	// BindLeft is Western binding: pages read left to right.
	BindLeft Binding = iota
	// BindRight is Japanese binding: pages read right to left.
	BindRight
)

// ParseBinding accepts "left" or "right" (case-insensitive).
func ParseBinding(s string) (Binding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return BindLeft, nil
	case "right":
		return BindRight, nil
	default:
		return BindLeft, fmt.Errorf("invalid binding %q (choose from 'left', 'right')", s)
	}
}

func (b Binding) String() string {
	if b == BindRight {
		return "right"
	}
	return "left"
}

// Describe returns the human readable label used in progress output.
func (b Binding) Describe() string {
	if b == BindRight {
		return "RIGHT (Japanese)"
	}
	return "LEFT (Western)"
}
