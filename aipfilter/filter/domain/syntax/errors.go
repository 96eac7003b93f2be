package syntax

import (
	"errors"
	"fmt"
)

// ErrEmptyFilter is returned for blank filter text.
var ErrEmptyFilter = errors.New("empty filter")

// SyntaxError reports malformed filter text.
type SyntaxError struct {
	Position int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Message)
}
