package metrics

import (
	"maps"
	"time"

	obserrors "github.com/clientcheckin/checkin-web/internal/observability/errors"
	"github.com/clientcheckin/checkin-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ResolutionMetric captures one profile resolution attempt.
type ResolutionMetric struct {
	// Outcome is "authenticated" or the notice kind of the failure.
	Outcome  string
	Duration time.Duration
	Err      error
}

// EmitResolution emits standardised resolution metrics.
func EmitResolution(sink statsd.Sink, in ResolutionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"outcome": in.Outcome}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	} else {
		tags["result"] = ResultSuccess
	}

	sink.Count("session.resolve", 1, tags)
	if in.Duration > 0 {
		sink.Timing("session.resolve.duration", in.Duration, CloneTags(tags))
	}
}

// EmitGuardDecision counts access guard decisions per requirement.
func EmitGuardDecision(sink statsd.Sink, requirement, decision string) {
	if sink == nil {
		return
	}
	sink.Count("guard.decision", 1, map[string]string{
		"requirement": requirement,
		"decision":    decision,
	})
}

// EmitRoleSwitch counts role switch attempts.
func EmitRoleSwitch(sink statsd.Sink, from, to string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"from": from, "to": to, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
	}
	sink.Count("session.role_switch", 1, tags)
}

// EmitScopes reports the number of live session scopes.
func EmitScopes(sink statsd.Sink, n int) {
	if sink == nil {
		return
	}
	sink.Gauge("session.scopes", float64(n), nil)
}

// EmitUpstream records an upstream API call.
func EmitUpstream(sink statsd.Sink, op string, d time.Duration, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"op": op, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Count("upstream.request", 1, tags)
	sink.Timing("upstream.duration", d, CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
