package verdict

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// MarkerPrefix starts every failure marker.
const MarkerPrefix = "Error: "

// TimeoutMarker is the marker for a request that exceeded its timeout.
const TimeoutMarker = MarkerPrefix + "Timeout"

// StatusError reports a non-success HTTP status from the remote service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%d", e.Code)
	}
	return fmt.Sprintf("%d: %s", e.Code, body)
}

// FailureMarker renders a request failure as text so it can travel through a batch
// like any other reply.
func FailureMarker(err error) string {
	if err == nil {
		return ""
	}
	if isTimeout(err) {
		return TimeoutMarker
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return MarkerPrefix + statusErr.Error()
	}
	return MarkerPrefix + err.Error()
}

// IsFailureMarker reports whether a raw body is a failure marker.
func IsFailureMarker(body string) bool {
	return strings.HasPrefix(body, MarkerPrefix)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
