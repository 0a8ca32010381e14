// internal/browser/jsbind/errors.go
package jsbind

import "fmt"

// SelectorError reports selector text that script code passed to querySelector,
// matches or closest and that could not be parsed. It surfaces in script as a thrown
// error and lets Go callers classify the failure with errors.As.
type SelectorError struct {
	Selector string
	Err      error
}

// Error implements the error interface by formatting the message on the fly.
func (e *SelectorError) Error() string {
	return fmt.Sprintf("'%s' is not a valid selector: %v", e.Selector, e.Err)
}

// Unwrap provides the underlying parse error for use with errors.Is/As.
func (e *SelectorError) Unwrap() error {
	return e.Err
}

// NewSelectorError creates a new SelectorError.
func NewSelectorError(selector string, err error) *SelectorError {
	return &SelectorError{
		Selector: selector,
		Err:      err,
	}
}
