package world

import (
	"context"
	"fmt"

	"rust-rush/server/logging/economy"
	"rust-rush/server/logging/simulation"
)

// PlaceDefender validates and applies a placement at cell. On success the
// defender's combat parameters are stamped from the current balance, the cost
// is deducted, and every live hostile replans around the new obstacle.
func (s *State) PlaceDefender(cell Cell, class DefenderClass) (Defender, error) {
	stats, ok := s.balance.DefenderStats(class)
	if !ok {
		return Defender{}, fmt.Errorf("%w: defender %q", ErrUnknownClass, class)
	}
	if !s.grid.Contains(cell) {
		return Defender{}, fmt.Errorf("%w: cell (%d,%d)", ErrOutOfBounds, cell.X, cell.Y)
	}
	if s.defenderIndexAt(cell) >= 0 {
		return Defender{}, fmt.Errorf("%w: cell (%d,%d)", ErrCellOccupied, cell.X, cell.Y)
	}
	if s.gold < stats.Cost {
		economy.PurchaseRejected(context.Background(), s.pub, s.tick, s.roomRef(), economy.PurchaseRejectedPayload{
			Class: string(class),
			Cost:  stats.Cost,
			Gold:  s.gold,
		}, nil)
		return Defender{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, stats.Cost, s.gold)
	}

	defender := Defender{
		ID:              s.allocDefenderID(),
		Cell:            cell,
		Class:           class,
		Level:           1,
		Range:           stats.Range,
		Damage:          stats.Damage,
		FireRate:        stats.FireRate,
		ProjectileSpeed: stats.ProjectileSpeed,
		SplashRadius:    stats.SplashRadius,
		SlowDuration:    stats.SlowDuration,
		SlowFactor:      stats.SlowFactor,
	}
	s.gold -= stats.Cost
	s.defenders = append(s.defenders, defender)
	s.replanRoutes("defender_placed")
	return defender, nil
}

// RemoveDefender tears down the defender occupying cell and replans every
// live hostile against the opened layout. There is no refund.
func (s *State) RemoveDefender(cell Cell) error {
	if !s.grid.Contains(cell) {
		return fmt.Errorf("%w: cell (%d,%d)", ErrOutOfBounds, cell.X, cell.Y)
	}
	idx := s.defenderIndexAt(cell)
	if idx < 0 {
		return fmt.Errorf("%w: cell (%d,%d)", ErrDefenderNotFound, cell.X, cell.Y)
	}
	s.defenders = append(s.defenders[:idx], s.defenders[idx+1:]...)
	s.replanRoutes("defender_removed")
	return nil
}

// SpawnHostile inserts a hostile of the given class. A nil route plans from
// the grid spawn cell to the goal; a caller-supplied route is taken verbatim.
// Fails with ErrNoRoute when no route to the goal exists.
func (s *State) SpawnHostile(class HostileClass, route []Position) (Hostile, error) {
	stats, ok := s.balance.HostileStats(class)
	if !ok {
		return Hostile{}, fmt.Errorf("%w: hostile %q", ErrUnknownClass, class)
	}
	if len(route) == 0 {
		planned, found := FindRoute(s.grid, s.grid.SpawnCell(), s.grid.GoalCell(), s.blockedCells())
		if !found {
			return Hostile{}, fmt.Errorf("%w: spawn to goal", ErrNoRoute)
		}
		route = planned
	}

	hostile := Hostile{
		ID:        s.allocHostileID(),
		Position:  route[0],
		Class:     class,
		Health:    stats.Health,
		MaxHealth: stats.Health,
		Speed:     stats.Speed,
		Route:     route,
	}
	s.hostiles = append(s.hostiles, hostile)
	return hostile, nil
}

// ClearAll empties defenders, hostiles, projectiles, effects, and any queued
// wave spawns. Resources and wave progression are untouched.
func (s *State) ClearAll() {
	s.defenders = s.defenders[:0]
	s.hostiles = s.hostiles[:0]
	s.projectiles = s.projectiles[:0]
	s.effects = s.effects[:0]
	s.spawner.reset()
}

// SetPaused freezes or resumes the simulation clock. A nil value toggles.
func (s *State) SetPaused(paused *bool) bool {
	if paused == nil {
		s.paused = !s.paused
	} else {
		s.paused = *paused
	}
	return s.paused
}

// Paused reports whether the simulation clock is frozen.
func (s *State) Paused() bool { return s.paused }

// StartWave queues the current wave's spawn list. Only one wave may be
// spawning at a time.
func (s *State) StartWave() (int, error) {
	if s.spawner.pending() {
		return 0, fmt.Errorf("%w: wave %d still spawning", ErrWaveInProgress, s.wave)
	}
	composition := waveComposition(s.wave)
	s.spawner.load(composition)
	simulation.WaveStarted(context.Background(), s.pub, s.tick, s.roomRef(), simulation.WaveStartedPayload{
		Wave:    s.wave,
		Pending: len(composition),
	}, nil)
	return s.wave, nil
}

// SetBalance swaps the stat tables used for future placements and spawns.
// Entities already in play keep the parameters stamped at creation.
func (s *State) SetBalance(balance Balance) error {
	if err := balance.Validate(); err != nil {
		return err
	}
	s.balance = balance.Clone()
	return nil
}

// replanRoutes recomputes every live hostile's route after the obstacle
// layout changed. A hostile with no remaining route stands trapped at its
// current cell until a later layout change frees it.
func (s *State) replanRoutes(reason string) {
	if len(s.hostiles) == 0 {
		return
	}
	blocked := s.blockedCells()
	goal := s.grid.GoalCell()
	trapped := 0
	for i := range s.hostiles {
		h := &s.hostiles[i]
		route, found := FindRoute(s.grid, h.Position.Cell(), goal, blocked)
		if !found {
			h.Route = []Position{PositionOf(h.Position.Cell())}
			h.RouteIndex = 0
			h.Trapped = true
			trapped++
			continue
		}
		h.Route = route
		h.RouteIndex = NearestWaypointIndex(route, h.Position)
		h.Trapped = false
	}
	simulation.RoutesReplanned(context.Background(), s.pub, s.tick, simulation.RoutesReplannedPayload{
		Hostiles: len(s.hostiles),
		Trapped:  trapped,
		Reason:   reason,
	}, nil)
}
