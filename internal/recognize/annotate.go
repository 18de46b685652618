package recognize

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	knownColor   = color.NRGBA{R: 46, G: 184, B: 92, A: 255}
	unknownColor = color.NRGBA{R: 214, G: 69, B: 56, A: 255}
	labelText    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const boxThickness = 3

// Annotate draws a labeled bounding box for every match onto the captured
// photo and returns the result as JPEG. Known faces get a green box with
// "Name (Confidence%)", unknown faces a red box labeled Unknown.
func Annotate(photo []byte, matches []Match) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	canvas := imaging.Clone(img)
	for i := range matches {
		drawMatch(canvas, &matches[i])
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encoding annotated photo: %w", err)
	}
	return buf.Bytes(), nil
}

func drawMatch(canvas *image.NRGBA, m *Match) {
	if len(m.BBox) != 4 {
		return
	}

	x1, y1 := int(m.BBox[0]), int(m.BBox[1])
	x2, y2 := int(m.BBox[2]), int(m.BBox[3])

	boxColor := unknownColor
	label := m.Name
	if m.Known() {
		boxColor = knownColor
		label = fmt.Sprintf("%s (%.1f%%)", m.Name, m.Confidence)
	}

	drawRect(canvas, x1, y1, x2, y2, boxColor)
	drawLabel(canvas, x1, y2, label, boxColor)
}

// drawRect draws a rectangle outline of boxThickness pixels.
func drawRect(canvas *image.NRGBA, x1, y1, x2, y2 int, c color.NRGBA) {
	fill := image.NewUniform(c)
	t := boxThickness
	// top, bottom, left, right edges
	draw.Draw(canvas, image.Rect(x1, y1, x2, y1+t), fill, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(x1, y2-t, x2, y2), fill, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(x1, y1, x1+t, y2), fill, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(x2-t, y1, x2, y2), fill, image.Point{}, draw.Src)
}

// drawLabel renders the label on a filled background just under the box's
// bottom-left corner.
func drawLabel(canvas *image.NRGBA, x, y int, label string, bg color.NRGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, label).Ceil()
	height := face.Metrics().Height.Ceil()

	pad := 3
	rect := image.Rect(x, y, x+width+2*pad, y+height+2*pad)
	draw.Draw(canvas, rect, image.NewUniform(bg), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(labelText),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x + pad),
			Y: fixed.I(y + pad + face.Metrics().Ascent.Ceil()),
		},
	}
	drawer.DrawString(label)
}
