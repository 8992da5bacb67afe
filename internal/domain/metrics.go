package domain

import "time"

// Metrics records core activity. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveToolCall(tool string, duration time.Duration, err error)
	ObserveResourceRead(kind string, duration time.Duration, err error)
	ObserveAPIRequest(method, endpoint string, status int, duration time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveToolCall(string, time.Duration, error) {}

func (NoopMetrics) ObserveResourceRead(string, time.Duration, error) {}

func (NoopMetrics) ObserveAPIRequest(string, string, int, time.Duration) {}

var _ Metrics = NoopMetrics{}
