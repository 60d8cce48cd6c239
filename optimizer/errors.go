package optimizer

import "errors"

var (
	// ErrBusy is returned when another optimization flow is already running.
	ErrBusy = errors.New("an optimization is already in progress")

	// ErrNoMessage is returned when the chat has no message to work on.
	ErrNoMessage = errors.New("no message to optimize")

	// ErrAnchorNotFound is returned when the first original sentence cannot be
	// located verbatim in the message during a count-mismatch splice.
	ErrAnchorNotFound = errors.New("first original sentence not found in message")

	// ErrEmptyRewrite is returned when the model produced no usable text.
	ErrEmptyRewrite = errors.New("model returned no rewritten text")
)

// reportedError marks an error the user has already been notified about,
// so the outer flow boundary does not notify twice.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
