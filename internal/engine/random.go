package engine

import (
	"math/rand/v2"
)

// Random is the random source of the engine. Uniform returns an integer in
// [min, max], both ends inclusive.
type Random interface {
	Uniform(min, max int) int
}

// SeededRandom is a deterministic PCG-backed Random.
type SeededRandom struct {
	r *rand.Rand
}

// NewRandom creates a Random that always produces the same sequence for the same seed.
func NewRandom(seed uint64) *SeededRandom {
	return &SeededRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededRandom) Uniform(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.r.IntN(max-min+1)
}

// QueueRandom hands out queued values first and falls back to another source
// (or to min) once the queue is drained. Queued values are clamped to the
// requested range.
type QueueRandom struct {
	values   []int
	Fallback Random
}

// NewQueueRandom prepares a deterministic sequence of draws.
func NewQueueRandom(values ...int) *QueueRandom {
	return &QueueRandom{values: values}
}

// Push appends more draws to the queue.
func (q *QueueRandom) Push(values ...int) {
	q.values = append(q.values, values...)
}

// Len is the number of queued draws left.
func (q *QueueRandom) Len() int { return len(q.values) }

func (q *QueueRandom) Uniform(min, max int) int {
	if len(q.values) == 0 {
		if q.Fallback != nil {
			return q.Fallback.Uniform(min, max)
		}
		return min
	}
	v := q.values[0]
	q.values = q.values[1:]
	if v < min {
		return min
	}
	if max >= min && v > max {
		return max
	}
	return v
}
