package logging

import (
	"sync"
	"sync/atomic"
)

// Metrics is a process-wide counter and gauge registry keyed by metric name.
// The zero value is ready to use.
type Metrics struct {
	values sync.Map // string -> *atomic.Uint64
	mu     sync.Mutex
}

func (m *Metrics) counter(key string) *atomic.Uint64 {
	if v, ok := m.values.Load(key); ok {
		return v.(*atomic.Uint64)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values.Load(key); ok {
		return v.(*atomic.Uint64)
	}
	v := new(atomic.Uint64)
	m.values.Store(key, v)
	return v
}

// TelemetryAdd increments the named counter.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.counter(key).Add(delta)
}

// TelemetryStore overwrites the named gauge.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.counter(key).Store(value)
}

// TelemetryValue reads a single metric, zero when absent.
func (m *Metrics) TelemetryValue(key string) uint64 {
	if m == nil {
		return 0
	}
	if v, ok := m.values.Load(key); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

// TelemetrySnapshot copies every metric into a plain map.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	snapshot := make(map[string]uint64)
	m.values.Range(func(key, value any) bool {
		snapshot[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return snapshot
}
