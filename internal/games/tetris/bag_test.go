package tetris

import (
	"encoding/json"
	"testing"
)

func TestFairBagDealsEveryShape(t *testing.T) {
	r := NewRandomizer(PolicyFair, 42)
	for bag := range 10 {
		seen := map[Shape]int{}
		for range len(Shapes) {
			seen[r.Generate().Shape]++
		}
		for _, s := range Shapes {
			if seen[s] != 1 {
				t.Errorf("bag %d: shape %s dealt %d times, expected 1", bag, s, seen[s])
			}
		}
	}
}

func TestRandomizerDeterminism(t *testing.T) {
	for _, policy := range []Policy{PolicyFair, PolicyHard} {
		a := NewRandomizer(policy, 7)
		b := NewRandomizer(policy, 7)
		for i := range 50 {
			if x, y := a.Generate().Shape, b.Generate().Shape; x != y {
				t.Fatalf("%s draw %d: %s vs %s", policy, i, x, y)
			}
		}
	}
}

func TestRandomizerJSONContinuesSequence(t *testing.T) {
	r := NewRandomizer(PolicyFair, 99)
	for range 3 {
		r.Generate()
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var restored Randomizer
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	for i := range 20 {
		if x, y := r.Generate().Shape, restored.Generate().Shape; x != y {
			t.Fatalf("draw %d after restore: %s vs %s", i, x, y)
		}
	}
	if restored.Policy() != PolicyFair {
		t.Errorf("Policy() = %s, expected fair", restored.Policy())
	}
}

func TestQueuePeekAndNext(t *testing.T) {
	q := NewQueue(NewRandomizer(PolicyHard, 3), 4)
	if len(q.Peek()) != 4 {
		t.Fatalf("Peek() len = %d, expected 4", len(q.Peek()))
	}

	front := q.Peek()[0]
	second := q.Peek()[1]
	if got := q.Next(); got != front {
		t.Errorf("Next() = %s, expected %s", got.Shape, front.Shape)
	}
	if q.Peek()[0] != second {
		t.Error("queue did not advance")
	}
	if len(q.Peek()) != 4 {
		t.Errorf("Peek() len after Next = %d, expected 4", len(q.Peek()))
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFair, false},
		{"fair", PolicyFair, false},
		{"hard", PolicyHard, false},
		{"random", PolicyHard, false},
		{"cruel", PolicyFair, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %s, expected %s", tt.in, got, tt.want)
		}
	}
}
