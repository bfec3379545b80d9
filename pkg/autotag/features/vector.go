package features

// Vector is a dense feature vector in the extractor's coordinate space
type Vector []float64

// Dim returns the vector length
func (v Vector) Dim() int { return len(v) }

// IsZero reports whether every component is zero
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Dot returns the inner product with w. Callers check dimensions first.
func (v Vector) Dot(w []float64) float64 {
	var sum float64
	for i, x := range v {
		if x == 0 {
			continue
		}
		sum += x * w[i]
	}
	return sum
}
