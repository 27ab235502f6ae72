package shape

import "fmt"

// ValidationError represents a file-level validation error, such as an
// unsupported version or an empty shape list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ShapeError represents a problem with one shape definition.
type ShapeError struct {
	Index   int    // 0-based index of the shape in the file
	ID      string // shape ID (may be empty if the id field is missing)
	Field   string
	Message string
	Cause   error
}

func (e *ShapeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("shape %q: %s: %s", e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("shape[%d]: %s: %s", e.Index, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ShapeError) Unwrap() error {
	return e.Cause
}
