package telemetry

import (
	"bytes"
	"log"
	"testing"
	"time"

	"rust-rush/server/logging"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})

	t.Run("exposes the wrapped logger", func(t *testing.T) {
		base := log.New(&bytes.Buffer{}, "", 0)
		provider, ok := WrapLogger(base).(interface{ StandardLogger() *log.Logger })
		if !ok {
			t.Fatalf("expected adapter to expose its standard logger")
		}
		if provider.StandardLogger() != base {
			t.Fatalf("expected the original logger back")
		}
	})
}

func TestWrapMetrics(t *testing.T) {
	metrics := logging.Metrics{}
	adapter := WrapMetrics(&metrics)

	adapter.Add("test_counter", 2)
	adapter.Store("test_counter", 5)
	adapter.Add("test_counter", 3)

	snapshot := metrics.TelemetrySnapshot()
	if got := snapshot["test_counter"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}

	// Ensure nil metrics do not panic.
	var nilAdapter Metrics = WrapMetrics(nil)
	nilAdapter.Add("ignored", 1)
	nilAdapter.Store("ignored", 1)
}

func TestCountersSnapshot(t *testing.T) {
	counters := NewCounters()

	counters.RecordBroadcast(128, 7)
	counters.RecordBroadcast(64, 3)
	counters.RecordTickDuration(12 * time.Millisecond)
	counters.IncrementFanoutDrop()
	counters.IncrementSendDrop()
	counters.IncrementSendDrop()
	counters.IncrementCommandRejected()
	counters.SetRoomsOpen(4)

	snap := counters.Snapshot()
	if snap.BytesSent != 192 {
		t.Fatalf("expected 192 bytes sent, got %d", snap.BytesSent)
	}
	if snap.FramesSent != 2 {
		t.Fatalf("expected 2 frames sent, got %d", snap.FramesSent)
	}
	if snap.EntitiesSent != 10 {
		t.Fatalf("expected 10 entities sent, got %d", snap.EntitiesSent)
	}
	if snap.FramesDroppedFanout != 1 {
		t.Fatalf("expected 1 fanout drop, got %d", snap.FramesDroppedFanout)
	}
	if snap.FramesDroppedSend != 2 {
		t.Fatalf("expected 2 send drops, got %d", snap.FramesDroppedSend)
	}
	if snap.CommandsRejected != 1 {
		t.Fatalf("expected 1 rejected command, got %d", snap.CommandsRejected)
	}
	if snap.TickDuration != 12 {
		t.Fatalf("expected tick duration 12ms, got %d", snap.TickDuration)
	}
	if snap.RoomsOpen != 4 {
		t.Fatalf("expected 4 rooms open, got %d", snap.RoomsOpen)
	}
}

func TestCountersClampNegative(t *testing.T) {
	counters := NewCounters()
	counters.RecordBroadcast(-5, -2)
	counters.SetRoomsOpen(-1)

	snap := counters.Snapshot()
	if snap.BytesSent != 0 || snap.EntitiesSent != 0 {
		t.Fatalf("negative broadcast values should clamp to zero, got %+v", snap)
	}
	if snap.RoomsOpen != 0 {
		t.Fatalf("negative room count should clamp to zero, got %d", snap.RoomsOpen)
	}
}
