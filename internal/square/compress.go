package square

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"squarify/internal/logging"
)

// applyCompression runs the pixel-altering compression steps. Only color
// reduction touches pixels; the other options act at save time.
func applyCompression(img image.Image, cfg CompressionConfig) image.Image {
	if !cfg.Active(OptionQuantize) {
		return img
	}

	bits := posterizeBits(cfg.Quantize.Colors)
	out := posterize(img, bits)
	logging.Printf("Applied posterization to ~%d colors (using %d bits)", cfg.Quantize.Colors, bits)
	return out
}

// posterizeBits picks the per-channel bit depth whose cube roughly covers
// the requested color count: clamp(ceil(log2(cbrt(n))), 1, 8).
func posterizeBits(colors int) int {
	colors = clamp(colors, MinColors, MaxColors)
	bits := int(math.Ceil(math.Log2(math.Cbrt(float64(colors)))))
	return clamp(bits, 1, 8)
}

// posterize keeps the top bits of each RGB channel and leaves alpha alone.
// It approximates palette quantization; it is not a real quantizer.
func posterize(img image.Image, bits int) *image.NRGBA {
	mask := uint8(0xff << uint(8-bits))
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: c.R & mask, G: c.G & mask, B: c.B & mask, A: c.A}
	})
}
