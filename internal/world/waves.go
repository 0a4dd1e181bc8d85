package world

// Wave pacing.
const (
	baseWaveSize      = 5
	waveSizeGrowth    = 2
	spawnInterval     = 1.0
	bossWaveFrequency = 5
)

// waveComposition builds the spawn list for a wave. Size grows linearly with
// the wave number, classes rotate through the ground roster, and every fifth
// wave leads with a boss.
func waveComposition(wave int) []HostileClass {
	if wave < 1 {
		wave = 1
	}
	count := baseWaveSize + waveSizeGrowth*(wave-1)
	rotation := []HostileClass{HostileBasic, HostileFast, HostileTank}

	composition := make([]HostileClass, count)
	for i := range composition {
		composition[i] = rotation[i%len(rotation)]
	}
	if wave%bossWaveFrequency == 0 {
		composition[0] = HostileBoss
	}
	return composition
}

// spawner drips queued hostiles into the world one interval apart. The first
// queued hostile emerges on the tick after loading.
type spawner struct {
	queue    []HostileClass
	timer    float64
	interval float64
}

func newSpawner() spawner {
	return spawner{interval: spawnInterval}
}

func (sp *spawner) load(classes []HostileClass) {
	sp.queue = append(sp.queue[:0], classes...)
	sp.timer = 0
}

func (sp *spawner) pending() bool { return len(sp.queue) > 0 }

func (sp *spawner) peek() HostileClass { return sp.queue[0] }

func (sp *spawner) pop() {
	sp.queue = sp.queue[1:]
}

func (sp *spawner) reset() {
	sp.queue = nil
	sp.timer = 0
}

// advanceSpawner releases the next queued hostile once its timer expires.
// A blocked spawn lane leaves the queue intact and retries next tick; the
// wave counter advances once the final hostile of the wave is out.
func (s *State) advanceSpawner(dt float64) {
	if !s.spawner.pending() {
		return
	}
	s.spawner.timer -= dt
	if s.spawner.timer > 0 {
		return
	}
	if _, err := s.SpawnHostile(s.spawner.peek(), nil); err != nil {
		return
	}
	s.spawner.pop()
	s.spawner.timer = s.spawner.interval
	if !s.spawner.pending() {
		s.wave++
	}
}
