package kubeconfig

import (
	"fmt"
	"strings"
)

// ContextNotFoundError is returned when no stored context matches the
// requested name, neither exactly nor as a substring.
type ContextNotFoundError struct {
	Name  string
	Known []string
}

func (e *ContextNotFoundError) Error() string {
	return fmt.Sprintf("context %q not found in available contexts: [%s]",
		e.Name, strings.Join(e.Known, ", "))
}

// AmbiguousContextError is returned when a partial context name matches more
// than one stored context.
type AmbiguousContextError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousContextError) Error() string {
	return fmt.Sprintf("multiple contexts found matching %q: [%s]; please specify the full context name",
		e.Name, strings.Join(e.Candidates, ", "))
}

// ContextLoadError is returned when a context resolved successfully but its
// backing kubeconfig file could not be loaded, typically because the file was
// edited or removed between resolution and load.
type ContextLoadError struct {
	Name string
	Err  error
}

func (e *ContextLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load context %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("failed to load context %q", e.Name)
}

func (e *ContextLoadError) Unwrap() error { return e.Err }
