package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
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

func checkerboard(width, height, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestAnalyzeUniformWhite(t *testing.T) {
	stats := Analyze(uniformImage(64, 64, color.White))

	assert.Equal(t, 64, stats.Width)
	assert.Equal(t, 64, stats.Height)
	assert.InDelta(t, 255.0, stats.Brightness, 1.0)
	assert.InDelta(t, 0.0, stats.Contrast, 0.5)
	assert.InDelta(t, 1.0, stats.WhitePixelRatio, 0.001)
	assert.InDelta(t, 0.0, stats.Blur, 0.5)
	assert.InDelta(t, 0.0, stats.RGBBalanceDelta, 0.5)
}

func TestAnalyzeUniformBlack(t *testing.T) {
	stats := Analyze(uniformImage(32, 32, color.Black))

	assert.InDelta(t, 0.0, stats.Brightness, 1.0)
	assert.InDelta(t, 0.0, stats.WhitePixelRatio, 0.001)
}

func TestAnalyzeCheckerboardHasContrastAndEdges(t *testing.T) {
	stats := Analyze(checkerboard(64, 64, 4))

	assert.Greater(t, stats.Contrast, 50.0)
	assert.Greater(t, stats.Blur, 100.0)
	assert.Greater(t, stats.BackgroundStdDev, 10.0)
}

func TestAnalyzeColorCast(t *testing.T) {
	red := uniformImage(32, 32, color.RGBA{R: 220, G: 40, B: 40, A: 255})
	stats := Analyze(red)

	assert.Greater(t, stats.RGBBalanceDelta, 100.0)
}

func TestAnalyzeTinyImagesDoNotPanic(t *testing.T) {
	for _, size := range []struct{ w, h int }{{0, 0}, {1, 1}, {2, 3}, {1, 100}} {
		img := image.NewRGBA(image.Rect(0, 0, size.w, size.h))
		assert.NotPanics(t, func() { Analyze(img) })
	}
}

func TestAnalyzeLandscapeOrientation(t *testing.T) {
	stats := Analyze(uniformImage(100, 50, color.White))

	assert.False(t, stats.IsPortrait())
	assert.Equal(t, 50, stats.MinSide())
}

func TestRotate90SwapsDimensions(t *testing.T) {
	img := uniformImage(40, 20, color.White)
	rotated := Rotate90(img)

	assert.Equal(t, 20, rotated.Bounds().Dx())
	assert.Equal(t, 40, rotated.Bounds().Dy())
}
