package operations

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"storefront/internal/domain"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

// FitSize returns the largest size within maxWidth x maxHeight that keeps the
// aspect ratio of width x height. Images already inside the bounds are never
// upscaled.
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))

	newWidth := clamp(int(math.Round(float64(width)*ratio)), 1, maxWidth)
	newHeight := clamp(int(math.Round(float64(height)*ratio)), 1, maxHeight)

	return newWidth, newHeight
}

// Fit draws img onto an opaque white canvas of width x height.
func (r *Resizer) Fit(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	src := img.Bounds()
	if src.Dx() == width && src.Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}

	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, src, xdraw.Over, nil)
	return dst
}

func (r *Resizer) Encode(img image.Image, format domain.ImageFormat, quality int) ([]byte, domain.ImageFormat, error) {
	buf := new(bytes.Buffer)
	var err error

	switch format {
	case domain.FormatWebP:
		err = webp.Encode(buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
		format = domain.FormatJPEG
	}

	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf.Bytes(), format, nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
