package square

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosterizeBits(t *testing.T) {
	tests := []struct {
		colors int
		want   int
	}{
		{2, 1},
		{9, 2},
		{27, 2},
		{100, 3},
		{256, 3},
		{1, 1},
		{100000, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, posterizeBits(tt.colors), "colors=%d", tt.colors)
	}
}

func TestPosterizePreservesAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, G: 0x7f, B: 0x01, A: 0x33})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0x9c, G: 0x40, B: 0xe7, A: 0xff})

	out := posterize(img, 2)
	assert.Equal(t, color.NRGBA{R: 0xc0, G: 0x40, B: 0x00, A: 0x33}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0x80, G: 0x40, B: 0xc0, A: 0xff}, out.NRGBAAt(1, 0))

	same := posterize(img, 8)
	assert.Equal(t, img.NRGBAAt(1, 0), same.NRGBAAt(1, 0))
}

func TestApplyCompressionOnlyQuantizeTouchesPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0x9c, G: 0x40, B: 0xe7, A: 0xff})

	cfg := DefaultCompression()
	cfg.Enabled = true
	cfg.StripMetadata.Enabled = true
	cfg.Optimize.Enabled = true
	cfg.JPEGQuality.Enabled = true
	assert.Same(t, img, applyCompression(img, cfg))

	cfg.Quantize = QuantizeOption{Enabled: true, Colors: 2}
	out := applyCompression(img, cfg)
	assert.Equal(t, color.NRGBA{R: 0x80, G: 0x00, B: 0x80, A: 0xff}, imageNRGBA(out))
}

func imageNRGBA(img image.Image) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
}
