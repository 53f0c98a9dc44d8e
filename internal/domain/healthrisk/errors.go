package healthrisk

import "fmt"

// InvalidInputError reports an assessment input that cannot be scored.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
