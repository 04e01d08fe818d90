package tetris

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestMarathonLeveling(t *testing.T) {
	m := NewMarathon(1, 0)

	steps := []struct {
		lines   int
		changed bool
		level   int
		before  int
	}{
		{4, false, 1, 6},
		{6, true, 2, 20},
		{45, true, 3, 5},
	}

	for i, s := range steps {
		if got := m.AddLines(s.lines); got != s.changed {
			t.Errorf("step %d: AddLines(%d) = %v, expected %v", i, s.lines, got, s.changed)
		}
		if m.Level != s.level || m.LinesBeforeNextLevel != s.before {
			t.Errorf("step %d: level %d before %d, expected level %d before %d",
				i, m.Level, m.LinesBeforeNextLevel, s.level, s.before)
		}
	}
}

func TestVersusSumInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	v := NewVersus()

	for i := range 1000 {
		if rng.IntN(2) == 0 {
			v.Receive(rng.IntN(5))
		} else if v.PendingSum > 0 {
			if err := v.Consume(1 + rng.IntN(v.PendingSum)); err != nil {
				t.Fatalf("step %d: Consume() error: %v", i, err)
			}
		}

		sum := 0
		for _, n := range v.Pending {
			if n <= 0 {
				t.Fatalf("step %d: empty batch left in queue %v", i, v.Pending)
			}
			sum += n
		}
		if sum != v.PendingSum {
			t.Fatalf("step %d: PendingSum = %d, queue sums to %d", i, v.PendingSum, sum)
		}
	}
}

func TestVersusConsumeOldestFirst(t *testing.T) {
	v := NewVersus()
	v.Receive(2)
	v.Receive(3)

	if err := v.Consume(3); err != nil {
		t.Fatalf("Consume() error: %v", err)
	}
	if len(v.Pending) != 1 || v.Pending[0] != 2 {
		t.Errorf("Pending = %v, expected [2]", v.Pending)
	}

	if err := v.Consume(5); !errors.Is(err, ErrDesync) {
		t.Errorf("Consume() over the sum error = %v, expected ErrDesync", err)
	}
}

func TestModeJSON(t *testing.T) {
	modes := []Mode{
		NewMarathon(3, 10),
		NewSprint(40),
		&Versus{Pending: []int{1, 4}, PendingSum: 5, Target: 1},
		&GameOfLife{TickCount: 2, Period: 4},
	}

	for _, m := range modes {
		data, err := MarshalMode(m)
		if err != nil {
			t.Fatalf("MarshalMode(%s) error: %v", m.ID(), err)
		}
		got, err := UnmarshalMode(data)
		if err != nil {
			t.Fatalf("UnmarshalMode(%s) error: %v", m.ID(), err)
		}
		if got.ID() != m.ID() {
			t.Errorf("ID() = %s, expected %s", got.ID(), m.ID())
		}
	}

	if _, err := UnmarshalMode([]byte(`{"id":"tag","data":{}}`)); err == nil {
		t.Error("UnmarshalMode() with an unknown id should fail")
	}
}

func TestGameOfLifePeriod(t *testing.T) {
	g := NewGameOfLife(3)
	var due []bool
	for range 6 {
		due = append(due, g.Tick())
	}
	want := []bool{false, false, true, false, false, true}
	for i := range want {
		if due[i] != want[i] {
			t.Errorf("Tick() #%d = %v, expected %v", i+1, due[i], want[i])
		}
	}
}
