package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// Decode parses raw image bytes into an image.Image. The format name is the
// one registered by the stdlib decoders ("jpeg", "png", "webp", "gif").
func Decode(b []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(fmt.Errorf("decode image: %w", err))
	}
	return img, format, nil
}

// Grayscale projects an image onto 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma weights on 16-bit channels.
			lum := (299*r + 587*g + 114*b) / 1000
			gray.SetGray(x, y, color16ToGray(lum))
		}
	}
	return gray
}

func color16ToGray(lum uint32) color.Gray {
	return color.Gray{Y: uint8(lum >> 8)}
}

// Rotate90 rotates an image 90 degrees clockwise.
func Rotate90(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(h-1-y, x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}
