package imaging

import (
	"image"
	"math/bits"
)

const hashSide = 8

// AverageHash computes a 64-bit perceptual hash: the image is reduced to an
// 8x8 grid of mean luminance cells, and each bit records whether its cell is
// above the grid mean. Visually similar images produce hashes with a small
// Hamming distance.
func AverageHash(img image.Image) uint64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	var cells [hashSide * hashSide]float64
	var counts [hashSide * hashSide]int

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		cy := (y - bounds.Min.Y) * hashSide / height
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cx := (x - bounds.Min.X) * hashSide / width
			r, g, b, _ := img.At(x, y).RGBA()
			l := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			idx := cy*hashSide + cx
			cells[idx] += l
			counts[idx]++
		}
	}

	var mean float64
	for i := range cells {
		if counts[i] > 0 {
			cells[i] /= float64(counts[i])
		}
		mean += cells[i]
	}
	mean /= float64(len(cells))

	var hash uint64
	for i, v := range cells {
		if v > mean {
			hash |= 1 << uint(i)
		}
	}
	return hash
}

// HammingDistance counts differing bits between two hashes.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
