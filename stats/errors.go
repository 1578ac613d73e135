package stats

import "fmt"

// ValidationError reports malformed or out-of-range caller input. It names
// the offending field so handlers can surface a specific 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
