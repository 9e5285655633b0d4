package metrics

import (
	"github.com/target/eventhub/internal/observability/statsd"
)

// ResolutionMetric describes one post-authentication navigation decision.
type ResolutionMetric struct {
	// Action is the session action applied (set_user, clear_user or keep).
	Action string
	// Redirected is true when the decision navigates away from the current location.
	Redirected bool
	// StoreError is true when the session store failed and the session was kept.
	StoreError bool
}

// EmitResolution emits auth.resolve.
func EmitResolution(sink statsd.Sink, in ResolutionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"action":      in.Action,
		"redirected":  boolTag(in.Redirected),
		"store_error": boolTag(in.StoreError),
	}
	sink.Count("auth.resolve", 1, tags)
}

// EmitLogin emits auth.login for a completed or failed login callback.
func EmitLogin(sink statsd.Sink, result string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": result}
	if err != nil {
		tags["error_class"] = errorClass(err)
	}
	sink.Count("auth.login", 1, tags)
}

func boolTag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
