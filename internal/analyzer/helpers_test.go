package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// inkedPage draws a black band across a white page, mimicking a signature
// stroke with plenty of ink.
func inkedPage(width, height int) *image.RGBA {
	img := uniformImage(width, height, color.White)
	for y := height / 2; y < height/2+height/10; y++ {
		for x := width / 5; x < 4*width/5; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

// splitImage is white on the left half and black on the right, giving a
// perceptual hash far from any uniform image.
func splitImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
