package sim

import (
	"rust-rush/server/internal/telemetry"
	"rust-rush/server/logging"
)

// Deps carries shared infrastructure dependencies required by a room engine.
type Deps struct {
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Clock   logging.Clock
}
