package simulation

import (
	"context"

	"rust-rush/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a room loop exceeds its tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventRoutesReplanned is emitted after a layout change forces hostile re-routing.
	EventRoutesReplanned logging.EventType = "simulation.routes_replanned"
	// EventCommandRejected is emitted when a queued command fails to apply.
	EventCommandRejected logging.EventType = "simulation.command_rejected"
	// EventWaveStarted is emitted when a wave spawner is armed.
	EventWaveStarted logging.EventType = "simulation.wave_started"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// RoutesReplannedPayload captures the outcome of a re-planning pass.
type RoutesReplannedPayload struct {
	Hostiles int    `json:"hostiles"`
	Trapped  int    `json:"trapped"`
	Reason   string `json:"reason"`
}

// CommandRejectedPayload captures the rejected command and cause.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// WaveStartedPayload captures the armed wave parameters.
type WaveStartedPayload struct {
	Wave    int `json:"wave"`
	Pending int `json:"pending"`
}

// TickBudgetOverrun publishes a warning when a room loop exceeds its budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: "system",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// RoutesReplanned publishes the result of a re-planning pass.
func RoutesReplanned(ctx context.Context, pub logging.Publisher, tick uint64, payload RoutesReplannedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventRoutesReplanned,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: "gameplay",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// CommandRejected publishes a warning for a command that failed to apply.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "gameplay",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// WaveStarted publishes a wave activation event.
func WaveStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload WaveStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWaveStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "gameplay",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
