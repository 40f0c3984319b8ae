package imaging

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// whiteLuminance is the near-white threshold on the 0-255 greyscale
// projection used for the white pixel ratio.
const whiteLuminance = 235.0

// borderFraction is the share of each dimension sampled as "background"
// when measuring background uniformity.
const borderFraction = 0.12

// Stats holds the pixel-level metrics consumed by the analyzers. All values
// are deterministic functions of the input image; rejection policy lives in
// the analyzers, never here.
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Brightness       float64 `json:"brightness"`         // mean luminance, 0-255
	Contrast         float64 `json:"contrast"`           // stddev of luminance
	Blur             float64 `json:"blur"`               // Laplacian variance; lower is blurrier
	BackgroundStdDev float64 `json:"background_std_dev"` // luminance stddev over border strips
	RGBBalanceDelta  float64 `json:"rgb_balance_delta"`  // max pairwise channel mean difference, 0-255
	WhitePixelRatio  float64 `json:"white_pixel_ratio"`  // fraction of near-white pixels
}

// MinSide returns the smaller image dimension.
func (s Stats) MinSide() int {
	if s.Width < s.Height {
		return s.Width
	}
	return s.Height
}

// IsPortrait reports whether the image is taller than wide.
func (s Stats) IsPortrait() bool {
	return s.Height >= s.Width
}

// Analyze computes all pixel metrics for an image. It is a pure function:
// no I/O, no shared state, and it never panics on tiny or empty images.
func Analyze(img image.Image) Stats {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	s := Stats{Width: width, Height: height}
	if width == 0 || height == 0 {
		return s
	}

	lum := make([]float64, 0, width*height)
	var sumR, sumG, sumB float64
	white := 0

	border := borderPixels(width, height)
	background := make([]float64, 0, 2*(width+height))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			l := 0.299*rf + 0.587*gf + 0.114*bf
			lum = append(lum, l)
			sumR += rf
			sumG += gf
			sumB += bf
			if l >= whiteLuminance {
				white++
			}

			if y-bounds.Min.Y < border || bounds.Max.Y-1-y < border ||
				x-bounds.Min.X < border || bounds.Max.X-1-x < border {
				background = append(background, l)
			}
		}
	}

	n := float64(len(lum))
	s.Brightness = stat.Mean(lum, nil)
	s.Contrast = stat.StdDev(lum, nil)
	s.WhitePixelRatio = float64(white) / n

	meanR, meanG, meanB := sumR/n, sumG/n, sumB/n
	s.RGBBalanceDelta = maxDelta(meanR, meanG, meanB)

	if len(background) > 1 {
		s.BackgroundStdDev = stat.StdDev(background, nil)
	}

	s.Blur = laplacianVariance(lum, width, height)

	return s
}

// laplacianVariance applies the 4-neighbour Laplacian kernel over the
// luminance plane and returns the variance of the responses. Images smaller
// than the kernel report zero.
func laplacianVariance(lum []float64, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}

	responses := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			center := lum[y*width+x]
			top := lum[(y-1)*width+x]
			bottom := lum[(y+1)*width+x]
			left := lum[y*width+x-1]
			right := lum[y*width+x+1]
			responses = append(responses, -4*center+top+bottom+left+right)
		}
	}

	if len(responses) < 2 {
		return 0
	}
	return stat.Variance(responses, nil)
}

func borderPixels(width, height int) int {
	min := width
	if height < min {
		min = height
	}
	border := int(float64(min) * borderFraction)
	if border < 1 {
		border = 1
	}
	return border
}

func maxDelta(r, g, b float64) float64 {
	d := abs(r - g)
	if v := abs(g - b); v > d {
		d = v
	}
	if v := abs(r - b); v > d {
		d = v
	}
	return d
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
