package interfaces

// RandomSource supplies the randomness used by factor evolution and sampling.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	// Float64 returns a uniform value in [0,1)
	Float64() float64
	// NormFloat64 returns a standard normal value
	NormFloat64() float64
}
