package messaging

import (
	"sync"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// EventBusMetrics tracks publish and handler execution counters.
// Exposed through the admin status endpoint.
type EventBusMetrics struct {
	mu sync.RWMutex

	publishedByType map[shared.EventType]int64

	handlerExecutions    int64
	handlerSuccesses     int64
	handlerFailures      int64
	handlerTotalDuration time.Duration

	startedAt time.Time
}

// NewEventBusMetrics creates a new metrics tracker.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{
		publishedByType: make(map[shared.EventType]int64),
		startedAt:       time.Now(),
	}
}

// RecordPublish counts a published event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedByType[eventType]++
}

// RecordHandlerExecution counts a handler run and its outcome.
func (m *EventBusMetrics) RecordHandlerExecution(eventType shared.EventType, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlerExecutions++
	m.handlerTotalDuration += duration
	if success {
		m.handlerSuccesses++
	} else {
		m.handlerFailures++
	}
}

// EventBusMetricsSnapshot is a point-in-time copy of the counters.
type EventBusMetricsSnapshot struct {
	TotalPublished         int64
	TotalHandlerExecs      int64
	HandlerSuccessRate     float64
	AverageHandlerDuration time.Duration
	StartedAt              time.Time
}

// Snapshot returns a consistent copy of current metrics.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, v := range m.publishedByType {
		total += v
	}

	successRate := 1.0
	if m.handlerExecutions > 0 {
		successRate = float64(m.handlerSuccesses) / float64(m.handlerExecutions)
	}

	avg := time.Duration(0)
	if m.handlerExecutions > 0 {
		avg = m.handlerTotalDuration / time.Duration(m.handlerExecutions)
	}

	return EventBusMetricsSnapshot{
		TotalPublished:         total,
		TotalHandlerExecs:      m.handlerExecutions,
		HandlerSuccessRate:     successRate,
		AverageHandlerDuration: avg,
		StartedAt:              m.startedAt,
	}
}
