package perf

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultSlowUpstreamMs is the threshold above which an upstream call is logged at WARN.
const DefaultSlowUpstreamMs = 1500

// Transport is an http.RoundTripper that times every upstream API call.
type Transport struct {
	Base      http.RoundTripper
	Collector *Collector
	SlowMs    float64
}

// NewTransport wraps base (http.DefaultTransport when nil) with timing.
func NewTransport(base http.RoundTripper, collector *Collector) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Collector: collector, SlowMs: DefaultSlowUpstreamMs}
}

// RoundTrip performs the call and records its duration and status.
// PRE: req is a valid outbound request
// POST: one KindUpstream entry recorded when a collector is set
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	path := req.Method + " " + req.URL.Host + req.URL.Path
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	switch {
	case err != nil:
		slog.Warn("upstream_failed", "call", path, "error", err.Error(), "duration_ms", durationMs)
	case durationMs >= t.SlowMs:
		slog.Warn("slow_upstream", "call", path, "status", status, "duration_ms", durationMs)
	default:
		slog.Debug("upstream", "call", path, "status", status, "duration_ms", durationMs)
	}

	if t.Collector != nil {
		t.Collector.Record(Entry{
			Kind:       KindUpstream,
			Path:       path,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return resp, err
}

// NewClient returns an http.Client whose calls are timed into collector.
// A zero timeout keeps the transport defaults.
func NewClient(timeout time.Duration, collector *Collector) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(nil, collector),
	}
}
