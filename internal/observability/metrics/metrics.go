// Package metrics emits eventhub's standard StatsD metrics.
package metrics

import (
	"context"
	"errors"
	"maps"
	"net"

	apperrors "github.com/target/eventhub/internal/errors"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}

// errorClass reduces err to a low-cardinality tag value.
func errorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	return "unknown"
}
