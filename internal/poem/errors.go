package poem

import "errors"

// ErrNoTemplates is returned by the selector when the store holds no templates.
var ErrNoTemplates = errors.New("no templates available")

// ValidationError reports a template or request that cannot be used. It is
// never retried and its message is safe to show to callers.
type ValidationError struct {
	Message       string
	UnknownTokens []string
}

func (e *ValidationError) Error() string { return e.Message }
