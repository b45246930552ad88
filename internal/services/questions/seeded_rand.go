package questions

// seededRand is a small linear-congruential generator used for reproducible
// question ordering. The exact sequence does not need to match any other
// implementation; what matters is that the same seed yields the same
// ordering on every client, with no global mutable state involved.
type seededRand struct {
	state uint64
}

// Numerical Recipes LCG constants
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

func newSeededRand(seed int64) *seededRand {
	return &seededRand{state: uint64(seed)}
}

// next advances the generator and returns the raw state
func (r *seededRand) next() uint64 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return r.state
}

// intn returns a deterministic value in [0, n)
func (r *seededRand) intn(n int) int {
	if n <= 0 {
		return 0
	}
	// Use the high bits; the low bits of an LCG have short cycles
	return int((r.next() >> 33) % uint64(n))
}

// shuffle performs a deterministic Fisher-Yates shuffle over n elements
func (r *seededRand) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.intn(i+1))
	}
}
