package world

import "testing"

func TestWaveCompositionGrowsAndRotates(t *testing.T) {
	wave1 := waveComposition(1)
	if len(wave1) != 5 {
		t.Fatalf("expected 5 hostiles in wave 1, got %d", len(wave1))
	}
	expected := []HostileClass{HostileBasic, HostileFast, HostileTank, HostileBasic, HostileFast}
	for i, class := range expected {
		if wave1[i] != class {
			t.Fatalf("wave 1 slot %d: expected %s, got %s", i, class, wave1[i])
		}
	}

	if got := len(waveComposition(2)); got != 7 {
		t.Fatalf("expected 7 hostiles in wave 2, got %d", got)
	}
	if got := len(waveComposition(5)); got != 13 {
		t.Fatalf("expected 13 hostiles in wave 5, got %d", got)
	}
}

func TestWaveCompositionLeadsWithBossEveryFifth(t *testing.T) {
	for _, wave := range []int{5, 10, 15} {
		if got := waveComposition(wave)[0]; got != HostileBoss {
			t.Fatalf("expected wave %d to lead with a boss, got %s", wave, got)
		}
	}
	for _, wave := range []int{1, 4, 6} {
		if got := waveComposition(wave)[0]; got == HostileBoss {
			t.Fatalf("expected no boss leading wave %d", wave)
		}
	}
}

func TestSpawnerDripsOneHostilePerInterval(t *testing.T) {
	s := NewState("room-1", DefaultGrid(), DefaultBalance(), nil)
	if _, err := s.StartWave(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.advanceSpawner(1.0 / 60)
	if len(s.hostiles) != 1 {
		t.Fatalf("expected first hostile out immediately, got %d", len(s.hostiles))
	}

	s.advanceSpawner(0.5)
	if len(s.hostiles) != 1 {
		t.Fatalf("expected no spawn mid-interval, got %d", len(s.hostiles))
	}
	s.advanceSpawner(0.5)
	if len(s.hostiles) != 2 {
		t.Fatalf("expected second hostile after a full interval, got %d", len(s.hostiles))
	}
	if s.hostiles[0].Class != HostileBasic || s.hostiles[1].Class != HostileFast {
		t.Fatalf("expected rotation order, got %s then %s", s.hostiles[0].Class, s.hostiles[1].Class)
	}
}

func TestSpawnerRetriesWhileSpawnLaneBlocked(t *testing.T) {
	s := NewState("room-1", Grid{Width: 3, Height: 1}, DefaultBalance(), nil)
	if _, err := s.PlaceDefender(Cell{X: 1, Y: 0}, DefenderBasic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.StartWave(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		s.advanceSpawner(1.0 / 60)
	}
	if len(s.hostiles) != 0 {
		t.Fatalf("expected no spawn while walled off, got %d", len(s.hostiles))
	}
	if got := len(s.spawner.queue); got != 5 {
		t.Fatalf("expected queue intact, got %d", got)
	}

	if err := s.RemoveDefender(Cell{X: 1, Y: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.advanceSpawner(1.0 / 60)
	if len(s.hostiles) != 1 {
		t.Fatalf("expected spawn to resume once the lane opened, got %d", len(s.hostiles))
	}
}

func TestWaveCounterAdvancesWhenSpawningCompletes(t *testing.T) {
	s := NewState("room-1", DefaultGrid(), DefaultBalance(), nil)
	if _, err := s.StartWave(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		s.advanceSpawner(1.0)
	}
	if len(s.hostiles) != 5 {
		t.Fatalf("expected full wave spawned, got %d", len(s.hostiles))
	}
	if s.wave != 2 {
		t.Fatalf("expected wave counter at 2 after spawning finished, got %d", s.wave)
	}

	wave, err := s.StartWave()
	if err != nil {
		t.Fatalf("expected next wave to start, got %v", err)
	}
	if wave != 2 || len(s.spawner.queue) != 7 {
		t.Fatalf("expected wave 2 with 7 spawns, got wave %d queue %d", wave, len(s.spawner.queue))
	}
}
