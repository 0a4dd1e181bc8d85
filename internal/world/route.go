package world

// FindRoute plans a shortest route from start to goal with breadth-first
// search over the four cardinal neighbors. Blocked cells are impassable, with
// one exception: the start cell is always traversable so an attacker standing
// on a freshly occupied cell can still plan its way off it. The returned
// route begins at start, ends at goal, and holds cell-center positions. The
// second result is false when no route exists.
func FindRoute(grid Grid, start, goal Cell, blocked CellSet) ([]Position, bool) {
	if !grid.Contains(start) || !grid.Contains(goal) {
		return nil, false
	}

	queue := [][]Cell{{start}}
	visited := CellSet{start: {}}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		current := path[len(path)-1]

		if current == goal {
			route := make([]Position, len(path))
			for i, cell := range path {
				route[i] = PositionOf(cell)
			}
			return route, true
		}

		for _, next := range []Cell{
			{X: current.X + 1, Y: current.Y},
			{X: current.X - 1, Y: current.Y},
			{X: current.X, Y: current.Y + 1},
			{X: current.X, Y: current.Y - 1},
		} {
			if !grid.Contains(next) || visited.Has(next) || blocked.Has(next) {
				continue
			}
			visited.Add(next)
			branch := make([]Cell, len(path), len(path)+1)
			copy(branch, path)
			queue = append(queue, append(branch, next))
		}
	}

	return nil, false
}

// NearestWaypointIndex picks the waypoint closest to p by Euclidean distance.
// Ties resolve to the earliest index so a resumed walk never skips ahead of
// an equally near later waypoint.
func NearestWaypointIndex(route []Position, p Position) int {
	best := 0
	bestDist := -1.0
	for i, waypoint := range route {
		d := p.DistanceTo(waypoint)
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
