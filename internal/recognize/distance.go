package recognize

import "math"

// EuclideanDistance computes the Euclidean distance between two descriptors.
// The embedding service's descriptor space keeps same-person distances
// roughly in [0, 1], so lower means more similar.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1) // Maximum distance for invalid input
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
