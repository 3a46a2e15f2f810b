package conversation

import (
	"errors"
	"fmt"
)

// Compile errors. Compilation is fail-fast: the first problem found is
// returned and the partial graph is discarded.
var (
	// ErrNoLines is returned when the script has an empty line list.
	ErrNoLines = errors.New("script has no lines")

	// ErrNoStartingLine is returned when no line carries start: true.
	ErrNoStartingLine = errors.New("no starting line found: set 'start: true' on one line")

	// ErrMultipleStartingLines is returned when more than one line carries start: true.
	ErrMultipleStartingLines = errors.New("multiple lines have 'start: true', only one is allowed")
)

// TalkerNotFoundError reports a line that names a talker missing from the
// script's talker list.
type TalkerNotFoundError struct {
	Line   int
	Talker string
}

func (e *TalkerNotFoundError) Error() string {
	return fmt.Sprintf("line %d references unknown talker %q", e.Line, e.Talker)
}

// NextLineNotFoundError reports a next or choice target pointing at an id
// that does not exist in the script.
type NextLineNotFoundError struct {
	Line   int
	Target int
}

func (e *NextLineNotFoundError) Error() string {
	return fmt.Sprintf("line %d points to id %d which was not found", e.Line, e.Target)
}

// RepeatedIDError reports a line id used more than once.
type RepeatedIDError struct {
	Line int
}

func (e *RepeatedIDError) Error() string {
	return fmt.Sprintf("line id %d is used by more than one line", e.Line)
}

// InvalidKindError reports an authored kind outside talk/enter/exit.
type InvalidKindError struct {
	Line int
	Kind string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("line %d has invalid kind %q", e.Line, e.Kind)
}

// Traversal errors. A failed traversal call leaves the conversation
// unchanged; callers may retry, re-prompt, or ignore.
var (
	// ErrNoNextAction is returned by Advance on a node with no outgoing edge.
	ErrNoNextAction = errors.New("no next action found")

	// ErrChoicesNotHandled is returned by Advance on a choice node; choices
	// are resolved by jumping to a target, not by advancing.
	ErrChoicesNotHandled = errors.New("cannot advance: current line has choices")

	// ErrNoTalk is returned by outer layers when there is no conversation
	// to operate on.
	ErrNoTalk = errors.New("no conversation found")

	// ErrSessionNotFound is returned by session stores when an id has no
	// saved state.
	ErrSessionNotFound = errors.New("session not found")
)

// WrongJumpError reports a jump to a line id that does not exist.
type WrongJumpError struct {
	Target int
}

func (e *WrongJumpError) Error() string {
	return fmt.Sprintf("jumped to line %d, but it does not exist", e.Target)
}
