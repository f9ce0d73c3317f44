package input

import (
	"fmt"

	"github.com/pkg/errors"
)

// UsageError indicates that the command line has the wrong shape
// (e.g. no URL). The caller prints usage in addition to the message.
type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// MalformedItemError indicates a request item that matches no recognized
// separator pattern or contains an invalid escape.
type MalformedItemError struct {
	Item   string
	Reason string
}

func (e *MalformedItemError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed request item: %q", e.Item)
	}
	return fmt.Sprintf("malformed request item %q: %s", e.Item, e.Reason)
}

func newMalformedItemError(item, reason string) error {
	return errors.WithStack(&MalformedItemError{Item: item, Reason: reason})
}

// InvalidURLError indicates that no structurally valid URL could be
// constructed from the argument plus defaults.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL: %s", e.URL)
}

// ErrConflictingBody is returned when both piped stdin and key=value
// body items are supplied.
var ErrConflictingBody = errors.New("request body (from stdin) and request data (key=value) cannot be mixed")
