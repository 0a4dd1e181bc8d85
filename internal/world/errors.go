package world

import "errors"

var (
	// ErrOutOfBounds indicates a cell outside the grid.
	ErrOutOfBounds = errors.New("world: cell out of bounds")
	// ErrCellOccupied indicates the cell already holds a defender.
	ErrCellOccupied = errors.New("world: cell occupied")
	// ErrNoRoute indicates the planner found no path from spawn to goal.
	ErrNoRoute = errors.New("world: no route available")
	// ErrInsufficientFunds indicates the room's gold cannot cover a purchase.
	ErrInsufficientFunds = errors.New("world: insufficient funds")
	// ErrDefenderNotFound indicates no defender occupies the named cell.
	ErrDefenderNotFound = errors.New("world: defender not found")
	// ErrUnknownClass indicates a category outside the closed set.
	ErrUnknownClass = errors.New("world: unknown class")
	// ErrWaveInProgress indicates the spawner has not finished the current wave.
	ErrWaveInProgress = errors.New("world: wave in progress")
)
