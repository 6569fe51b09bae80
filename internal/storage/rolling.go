package storage

// RollingAverage is the mean of the last n values.
type RollingAverage struct {
	values []float64
	head   int
	size   int
	sum    float64
}

func NewRollingAverage(n int) *RollingAverage {
	if n < 1 {
		n = 1
	}
	return &RollingAverage{values: make([]float64, n)}
}

func (r *RollingAverage) Add(v float64) {
	if r.size == len(r.values) {
		r.sum -= r.values[r.head]
	} else {
		r.size++
	}
	r.values[r.head] = v
	r.sum += v
	r.head = (r.head + 1) % len(r.values)
}

func (r *RollingAverage) Average() float64 {
	if r.size == 0 {
		return 0
	}
	return r.sum / float64(r.size)
}

// Compute adds v and returns the new average.
func (r *RollingAverage) Compute(v float64) float64 {
	r.Add(v)
	return r.Average()
}

func (r *RollingAverage) Len() int { return r.size }
func (r *RollingAverage) Cap() int { return len(r.values) }

func (r *RollingAverage) Reset() {
	r.head = 0
	r.size = 0
	r.sum = 0
}
