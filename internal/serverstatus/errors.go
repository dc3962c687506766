package serverstatus

import "fmt"

const (
	OpRequest = "request"
	OpStatus  = "status"
	OpDecode  = "decode"
)

// FetchError describes a failed poll of the status API.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s: unexpected status %d", e.URL, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
