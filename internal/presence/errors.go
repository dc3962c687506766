package presence

import "fmt"

const (
	OpActivity = "activity"
	OpBanner   = "banner"
)

// UpdateError is returned when the chat platform or the banner pipeline
// rejected an update.
type UpdateError struct {
	Op  string
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %s: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
