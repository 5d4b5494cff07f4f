package trail

import "github.com/vedantwpatil/cursor-reveal/internal/shape"

const (
	// DefaultCapacity bounds the number of live masks.
	DefaultCapacity = 79
	// DefaultDecayStep is subtracted from every mask's opacity per decay tick.
	DefaultDecayStep = 0.006
)

// Mask is one historical pointer position that fades out over time.
type Mask struct {
	Position shape.Point
	Radius   float64
	Opacity  float64
	Shape    shape.Kind
}

// Store is an ordered, bounded collection of decaying masks, oldest first.
// It is not safe for concurrent use; callers own it from a single goroutine.
type Store struct {
	masks     []Mask
	capacity  int
	decayStep float64
}

func NewStore(capacity int, decayStep float64) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if decayStep <= 0 {
		decayStep = DefaultDecayStep
	}
	return &Store{
		masks:     make([]Mask, 0, capacity+1),
		capacity:  capacity,
		decayStep: decayStep,
	}
}

// Append adds m as the newest mask and evicts the oldest ones while the
// store is over capacity.
func (s *Store) Append(m Mask) {
	s.masks = append(s.masks, m)
	if over := len(s.masks) - s.capacity; over > 0 {
		n := copy(s.masks, s.masks[over:])
		clear(s.masks[n:])
		s.masks = s.masks[:n]
	}
}

// DecayAndPrune lowers every mask's opacity by one step and drops the masks
// that reached zero. It returns the number of masks removed.
func (s *Store) DecayAndPrune() int {
	removed := 0
	for i := len(s.masks) - 1; i >= 0; i-- {
		s.masks[i].Opacity -= s.decayStep
		if s.masks[i].Opacity <= 0 {
			s.masks = append(s.masks[:i], s.masks[i+1:]...)
			removed++
		}
	}
	return removed
}

// Each calls fn for every mask, oldest first.
func (s *Store) Each(fn func(Mask)) {
	for _, m := range s.masks {
		fn(m)
	}
}

// Snapshot returns a copy of the masks, oldest first.
func (s *Store) Snapshot() []Mask {
	out := make([]Mask, len(s.masks))
	copy(out, s.masks)
	return out
}

func (s *Store) Len() int      { return len(s.masks) }
func (s *Store) Capacity() int { return s.capacity }

func (s *Store) Reset() {
	clear(s.masks)
	s.masks = s.masks[:0]
}
