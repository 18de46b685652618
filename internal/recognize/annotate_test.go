package recognize

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestAnnotate(t *testing.T) {
	photo := testJPEG(t, 320, 240)
	matches := []Match{
		{Name: "Alice", Confidence: 87.5, BBox: []float64{20, 20, 120, 140}},
		{Name: "Unknown", Confidence: 0, BBox: []float64{180, 30, 300, 170}},
	}

	annotated, err := Annotate(photo, matches)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(annotated))
	if err != nil {
		t.Fatalf("annotated output is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Errorf("annotated image changed dimensions: %v", img.Bounds())
	}
}

func TestAnnotate_SkipsMalformedBBox(t *testing.T) {
	photo := testJPEG(t, 100, 100)
	matches := []Match{
		{Name: "Alice", Confidence: 90, BBox: []float64{1, 2}}, // wrong length
	}

	if _, err := Annotate(photo, matches); err != nil {
		t.Fatalf("Annotate must tolerate malformed boxes: %v", err)
	}
}

func TestAnnotate_BadImage(t *testing.T) {
	if _, err := Annotate([]byte("not an image"), nil); err == nil {
		t.Error("expected error for undecodable photo")
	}
}
