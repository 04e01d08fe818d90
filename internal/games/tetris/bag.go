package tetris

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Policy selects how the randomizer draws pieces.
type Policy uint8

const (
	// PolicyFair deals all seven shapes once per shuffled bag.
	PolicyFair Policy = iota
	// PolicyHard draws every piece uniformly, repeats allowed.
	PolicyHard
)

func (p Policy) String() string {
	if p == PolicyHard {
		return "hard"
	}
	return "fair"
}

// ParsePolicy converts a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fair", "bag":
		return PolicyFair, nil
	case "hard", "random":
		return PolicyHard, nil
	}
	return PolicyFair, fmt.Errorf("tetris: unknown randomizer policy %q", s)
}

// Randomizer generates pieces. Its PCG state is serializable so a saved game
// resumes the same sequence.
type Randomizer struct {
	policy Policy
	src    *rand.PCG
	rng    *rand.Rand
	stack  []Shape
}

// NewRandomizer creates a randomizer seeded deterministically.
func NewRandomizer(policy Policy, seed uint64) *Randomizer {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Randomizer{
		policy: policy,
		src:    src,
		rng:    rand.New(src),
	}
}

// Policy returns the draw policy.
func (r *Randomizer) Policy() Policy {
	return r.policy
}

// Generate returns the next piece in spawn orientation at column 0.
func (r *Randomizer) Generate() Mino {
	if r.policy == PolicyHard {
		return NewMino(Shapes[r.rng.IntN(len(Shapes))])
	}

	if len(r.stack) == 0 {
		r.stack = append(r.stack, Shapes[:]...)
		for i := range len(r.stack) - 1 {
			j := i + r.rng.IntN(len(r.stack)-i)
			r.stack[i], r.stack[j] = r.stack[j], r.stack[i]
		}
	}
	s := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return NewMino(s)
}

// IntN returns a uniform int in [0, n).
func (r *Randomizer) IntN(n int) int {
	return r.rng.IntN(n)
}

type randomizerJSON struct {
	Policy Policy  `json:"policy"`
	State  []byte  `json:"state"`
	Stack  []Shape `json:"stack"`
}

func (r *Randomizer) MarshalJSON() ([]byte, error) {
	state, err := r.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("tetris: encode randomizer: %w", err)
	}
	return json.Marshal(randomizerJSON{Policy: r.policy, State: state, Stack: r.stack})
}

func (r *Randomizer) UnmarshalJSON(data []byte) error {
	var aux randomizerJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(aux.State); err != nil {
		return fmt.Errorf("tetris: decode randomizer: %w", err)
	}
	*r = Randomizer{policy: aux.Policy, src: src, rng: rand.New(src), stack: aux.Stack}
	return nil
}

// Queue keeps a fixed number of upcoming pieces in front of a randomizer so
// they can be previewed.
type Queue struct {
	rand    *Randomizer
	pending []Mino
}

// NewQueue fills a lookahead queue of the given depth.
func NewQueue(r *Randomizer, depth int) *Queue {
	q := &Queue{rand: r, pending: make([]Mino, 0, depth)}
	for range depth {
		q.pending = append(q.pending, r.Generate())
	}
	return q
}

// Next pops the front piece and refills the back.
func (q *Queue) Next() Mino {
	if len(q.pending) == 0 {
		return q.rand.Generate()
	}
	m := q.pending[0]
	copy(q.pending, q.pending[1:])
	q.pending[len(q.pending)-1] = q.rand.Generate()
	return m
}

// NextCentered pops the front piece in spawn orientation, centered in w.
func (q *Queue) NextCentered(w *Well) Mino {
	m := q.Next()
	m.Reset()
	m.Center(w.Cols)
	return m
}

// Peek returns the upcoming pieces, front first. The slice must not be modified.
func (q *Queue) Peek() []Mino {
	return q.pending
}

// Gap rolls a garbage gap column for a well of the given width.
func (q *Queue) Gap(cols int) int {
	return q.rand.IntN(cols)
}

type queueJSON struct {
	Randomizer *Randomizer `json:"randomizer"`
	Pending    []Mino      `json:"pending"`
}

func (q *Queue) MarshalJSON() ([]byte, error) {
	return json.Marshal(queueJSON{Randomizer: q.rand, Pending: q.pending})
}

func (q *Queue) UnmarshalJSON(data []byte) error {
	var aux queueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Randomizer == nil {
		return fmt.Errorf("tetris: queue without randomizer")
	}
	q.rand = aux.Randomizer
	q.pending = aux.Pending
	return nil
}
