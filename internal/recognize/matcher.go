// Package recognize assigns identities to faces detected in a captured photo
// by comparing their descriptors against the encoding database.
package recognize

import (
	"bytes"
	"context"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/encodings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Match is one detected face joined with its assigned identity.
type Match struct {
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"` // [x1, y1, x2, y2] in the original photo's pixel space
	DetScore   float64   `json:"det_score"`
}

// Known reports whether the face was matched to a registered student.
func (m *Match) Known() bool {
	return m.Name != constants.UnknownName
}

// Matcher recognizes faces using an embedding provider.
type Matcher struct {
	provider embedding.Provider
}

// NewMatcher creates a matcher backed by the given provider.
func NewMatcher(provider embedding.Provider) *Matcher {
	return &Matcher{provider: provider}
}

// flatRefs is the encoding database flattened into parallel slices so a query
// descriptor can be compared against every reference descriptor. Names are
// sorted so the flattening order, and therefore tie-breaking, is
// deterministic.
type flatRefs struct {
	names []string
	descs [][]float32
}

func flatten(db encodings.Database) *flatRefs {
	names := make([]string, 0, len(db))
	for name := range db {
		names = append(names, name)
	}
	sort.Strings(names)

	refs := &flatRefs{}
	for _, name := range names {
		for _, desc := range db[name] {
			refs.names = append(refs.names, name)
			refs.descs = append(refs.descs, desc)
		}
	}
	return refs
}

// bestMatch returns the flat index and distance of the globally closest
// reference descriptor. Ties resolve to the lowest index.
func (r *flatRefs) bestMatch(query []float32) (int, float64) {
	bestIdx := -1
	bestDist := math.Inf(1)
	for i, desc := range r.descs {
		if d := EuclideanDistance(query, desc); d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}
	return bestIdx, bestDist
}

// Recognize identifies every face in the captured photo. A face whose closest
// reference descriptor lies within tolerance gets that descriptor's name and
// a confidence of round((1-distance)*100, 1); everything else is Unknown with
// confidence 0. An empty database or an unreachable embedding service yields
// an empty result, not an error.
func (m *Matcher) Recognize(ctx context.Context, photo []byte, db encodings.Database, tolerance float64) ([]Match, error) {
	if len(db) == 0 || !m.provider.Available(ctx) {
		return []Match{}, nil
	}
	if tolerance <= 0 {
		tolerance = constants.DefaultTolerance
	}

	// Detection runs on a downscaled copy for speed; bounding boxes are
	// mapped back to the original coordinate space below.
	detectData, scale := prepareForDetection(photo)

	faceResp, err := m.provider.DetectFaces(ctx, detectData)
	if err != nil {
		return nil, err
	}

	refs := flatten(db)
	var index *refIndex
	if len(refs.descs) >= constants.HNSWThreshold {
		index = buildRefIndex(refs.descs)
	}

	matches := make([]Match, 0, len(faceResp.Faces))
	for _, face := range faceResp.Faces {
		var idx int
		var dist float64
		if index != nil {
			idx, dist = index.nearest(face.Embedding)
		} else {
			idx, dist = refs.bestMatch(face.Embedding)
		}

		match := Match{
			Name:       constants.UnknownName,
			Confidence: 0.0,
			BBox:       scaleBBox(face.BBox, scale),
			DetScore:   face.DetScore,
		}
		if idx >= 0 && dist <= tolerance {
			match.Name = refs.names[idx]
			match.Confidence = confidence(dist)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// confidence maps a match distance to a percentage, rounded to one decimal
// and clamped to [0, 100].
func confidence(distance float64) float64 {
	c := math.Round((1-distance)*100*10) / 10
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// prepareForDetection downscales oversized captures before they are sent to
// the embedding service and returns the factor by which detected bounding
// boxes must be multiplied to land back in the original coordinate space.
// Images that cannot be decoded locally pass through unchanged.
func prepareForDetection(photo []byte) ([]byte, float64) {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return photo, 1
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= constants.MaxDetectionSize {
		return photo, 1
	}

	var small image.Image
	if w >= h {
		small = imaging.Resize(img, constants.MaxDetectionSize, 0, imaging.Lanczos)
	} else {
		small = imaging.Resize(img, 0, constants.MaxDetectionSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, small, imaging.JPEG); err != nil {
		return photo, 1
	}
	return buf.Bytes(), float64(longest) / float64(constants.MaxDetectionSize)
}

func scaleBBox(bbox []float64, scale float64) []float64 {
	if scale == 1 || len(bbox) == 0 {
		return bbox
	}
	scaled := make([]float64, len(bbox))
	for i, v := range bbox {
		scaled[i] = v * scale
	}
	return scaled
}
