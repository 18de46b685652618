// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Recognition constants
const (
	// DefaultTolerance is the default maximum Euclidean distance between a
	// query descriptor and a reference descriptor for a positive match.
	// Lower values = stricter matching.
	DefaultTolerance = 0.5

	// UnknownName is the sentinel identity assigned to faces that match no
	// reference descriptor within tolerance.
	UnknownName = "Unknown"

	// MaxDetectionSize is the maximum dimension (width or height) sent to the
	// embedding service. Larger captures are downscaled before detection and
	// bounding boxes are mapped back to the original coordinate space.
	MaxDetectionSize = 1024

	// HNSWThreshold is the number of reference descriptors above which the
	// matcher builds an in-memory HNSW index instead of scanning linearly.
	HNSWThreshold = 512
)

// Upload constants
const (
	// MaxUploadSize is the maximum accepted multipart upload size in bytes.
	MaxUploadSize = 32 << 20 // 32 MB
)

// Ledger constants
const (
	// DateFormat is the ledger date layout.
	DateFormat = "2006-01-02"

	// TimeFormat is the ledger time-of-day layout (24h).
	TimeFormat = "15:04:05"

	// StatusPresent is the only status currently written to the ledger.
	StatusPresent = "Present"
)
