package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication marks a failed login handshake; nothing has been
	// downloaded when it is raised.
	ErrAuthentication = errors.New("authentication error")
	// ErrIncompleteDetail marks an activity detail whose summary stayed empty
	// after the bounded retries.
	ErrIncompleteDetail = errors.New("incomplete detail")
	// ErrTransport marks an HTTP status outside the documented set.
	ErrTransport = errors.New("transport error")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
