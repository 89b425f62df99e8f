package page

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigation is matched by NavigationError.
	ErrNavigation = errors.New("navigation failed")
	// ErrViewport is matched by ViewportError.
	ErrViewport = errors.New("viewport rejected")
	// ErrAction is matched by ActionError.
	ErrAction = errors.New("action failed")
	// ErrUnknownTarget is returned when a page id has no registered URL.
	ErrUnknownTarget = errors.New("unknown target page")
)

// NavigationError reports a non-success response or a timeout while loading a URL.
// It is the only error kind the driver retries.
type NavigationError struct {
	URL    string
	Status int
	Err    error
}

func (e *NavigationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("navigating to %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("navigating to %s: status %d", e.URL, e.Status)
	}
}

// Is reports whether target is ErrNavigation.
func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ViewportError reports viewport dimensions that cannot be applied.
type ViewportError struct {
	Width  int
	Height int
	Err    error
}

func (e *ViewportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("setting viewport %dx%d: %v", e.Width, e.Height, e.Err)
	}

	return fmt.Sprintf("setting viewport %dx%d: dimensions must be positive", e.Width, e.Height)
}

// Is reports whether target is ErrViewport.
func (e *ViewportError) Is(target error) bool {
	return target == ErrViewport
}

func (e *ViewportError) Unwrap() error {
	return e.Err
}

// ActionError wraps a failure of any action capability.
type ActionError struct {
	Action   string
	Selector string
	Err      error
}

func (e *ActionError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("action %s on %s: %v", e.Action, e.Selector, e.Err)
	}

	return fmt.Sprintf("action %s: %v", e.Action, e.Err)
}

// Is reports whether target is ErrAction.
func (e *ActionError) Is(target error) bool {
	return target == ErrAction
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// CheckViewport returns a ViewportError if either dimension is non-positive.
func CheckViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return &ViewportError{Width: width, Height: height}
	}

	return nil
}
