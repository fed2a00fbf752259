package square

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squarify/internal/imagetest"
)

func TestSquareAlphaSourceIsPaddedTransparent(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	srcImg := imagetest.Translucent(100, 50)
	src := imagetest.WritePNG(t, dir, "a.png", srcImg)

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(out, "a_square.png"), res.Output)
	assert.True(t, res.Alpha)
	assert.Equal(t, 100, res.Side)

	img, format := imagetest.Decode(t, res.Output)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

	for _, pt := range []image.Point{{0, 0}, {99, 24}, {50, 10}, {0, 75}, {99, 99}} {
		assert.Equal(t, uint8(0), imagetest.NRGBAAt(img, pt.X, pt.Y).A, "padding at %v", pt)
	}
	for _, pt := range []image.Point{{0, 0}, {37, 12}, {99, 49}} {
		want := srcImg.NRGBAAt(pt.X, pt.Y)
		assert.Equal(t, want, imagetest.NRGBAAt(img, pt.X, pt.Y+25), "source pixel %v", pt)
	}
}

func TestSquareOpaqueSourceIsCentered(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	srcImg := imagetest.Opaque(31, 60)
	src := imagetest.WritePNG(t, dir, "tall.PNG", srcImg)

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.False(t, res.Alpha)
	assert.Equal(t, filepath.Join(out, "tall_square.png"), res.Output)

	img, _ := imagetest.Decode(t, res.Output)
	require.Equal(t, image.Rect(0, 0, 60, 60), img.Bounds())

	// (60-31)/2 = 14
	white := imagetest.NRGBAAt(img, 0, 0)
	assert.Equal(t, uint8(0xff), white.A)
	assert.Equal(t, uint8(0xff), white.R)
	assert.Equal(t, white, imagetest.NRGBAAt(img, 13, 30))
	assert.Equal(t, white, imagetest.NRGBAAt(img, 45, 30))

	for _, pt := range []image.Point{{0, 0}, {30, 59}, {15, 20}} {
		want := imagetest.NRGBAAt(srcImg, pt.X, pt.Y)
		assert.Equal(t, want, imagetest.NRGBAAt(img, pt.X+14, pt.Y), "source pixel %v", pt)
	}
}

func TestSquareKeepsSafeExtension(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	src := imagetest.WriteJPEG(t, dir, "b.jpg", imagetest.Opaque(50, 50))

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(out, "b_square.jpg"), res.Output)

	img, format := imagetest.Decode(t, res.Output)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 50, 50), img.Bounds())
}

func TestSquareUnknownExtensionFallsBackToPNG(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	src := imagetest.WriteFile(t, dir, "photo.dat", imagetest.EncodeJPEG(t, imagetest.Opaque(20, 10)))

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(out, "photo_square.png"), res.Output)

	_, format := imagetest.Decode(t, res.Output)
	assert.Equal(t, "png", format)
}

func TestSquareTransparentGIFBecomesPNG(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	src := imagetest.WriteGIF(t, dir, "sprite.gif", imagetest.TransparentPaletted(8, 4))

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.True(t, res.Alpha)
	assert.Equal(t, filepath.Join(out, "sprite_square.png"), res.Output)

	img, _ := imagetest.Decode(t, res.Output)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
	assert.Equal(t, uint8(0), imagetest.NRGBAAt(img, 0, 0).A)
}

func TestSquareOverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	src := imagetest.WritePNG(t, dir, "x.png", imagetest.Opaque(4, 2))
	existing := imagetest.WriteFile(t, out, "x_square.png", []byte("stale"))

	res := Square(src, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, existing, res.Output)

	_, format := imagetest.Decode(t, existing)
	assert.Equal(t, "png", format)
}

func TestSquareIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	src := imagetest.WriteJPEG(t, dir, "same.jpg", imagetest.Opaque(40, 25))

	cfg := DefaultCompression()
	cfg.Enabled = true
	cfg.JPEGQuality = QualityOption{Enabled: true, Value: 60}
	cfg.Quantize = QuantizeOption{Enabled: true, Colors: 64}

	first := Square(src, out, cfg)
	require.NoError(t, first.Err)
	firstBytes, err := os.ReadFile(first.Output)
	require.NoError(t, err)

	second := Square(src, out, cfg)
	require.NoError(t, second.Err)
	secondBytes, err := os.ReadFile(second.Output)
	require.NoError(t, err)

	assert.Equal(t, first.Output, second.Output)
	assert.True(t, bytes.Equal(firstBytes, secondBytes))
}

func TestSquareQuantizePosterizesPixels(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	srcImg := imagetest.Translucent(6, 6)
	src := imagetest.WritePNG(t, dir, "p.png", srcImg)

	cfg := DefaultCompression()
	cfg.Enabled = true
	cfg.Quantize = QuantizeOption{Enabled: true, Colors: 8}

	res := Square(src, out, cfg)
	require.NoError(t, res.Err)

	img, _ := imagetest.Decode(t, res.Output)
	bits := posterizeBits(8)
	mask := uint8(0xff << uint(8-bits))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := srcImg.NRGBAAt(x, y)
			got := imagetest.NRGBAAt(img, x, y)
			assert.Equal(t, want.A, got.A)
			assert.Equal(t, want.R&mask, got.R)
			assert.Equal(t, want.G&mask, got.G)
			assert.Equal(t, want.B&mask, got.B)
		}
	}
}

func TestSquareFailures(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	text := imagetest.WriteFile(t, dir, "c.txt", []byte("not an image at all"))
	empty := imagetest.WriteFile(t, dir, "empty.png", nil)
	truncated := imagetest.WriteFile(t, dir, "broken.png", imagetest.PNGWithTextChunks(t, imagetest.Opaque(8, 8))[:40])

	tests := []struct {
		name string
		path string
	}{
		{"text file", text},
		{"empty file", empty},
		{"truncated file", truncated},
		{"missing file", filepath.Join(dir, "missing.png")},
		{"directory", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Square(tt.path, out, DefaultCompression())
			require.Error(t, res.Err)
			assert.False(t, res.OK())
			assert.Empty(t, res.Output)
			assert.True(t, errors.Is(res.Err, ErrUnreadableImage), "got %v", res.Err)
		})
	}
}

func TestSquareMissingOutputFolderIsProcessingError(t *testing.T) {
	dir := t.TempDir()
	src := imagetest.WritePNG(t, dir, "x.png", imagetest.Opaque(2, 2))

	res := Square(src, filepath.Join(dir, "nope", "deeper"), DefaultCompression())
	require.Error(t, res.Err)

	var perr *ProcessingError
	require.True(t, errors.As(res.Err, &perr))
	assert.Equal(t, src, perr.Path)
	assert.True(t, errors.Is(res.Err, os.ErrNotExist))
}

func TestSquareReadOnlyOutputIsPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(out, 0o500))
	t.Cleanup(func() { _ = os.Chmod(out, 0o755) })
	src := imagetest.WritePNG(t, dir, "x.png", imagetest.Opaque(2, 2))

	res := Square(src, out, DefaultCompression())
	assert.True(t, errors.Is(res.Err, ErrPermissionDenied), "got %v", res.Err)
}

func TestSquareReportsMetadataEntries(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	pngPath := imagetest.WriteFile(t, dir, "meta.png",
		imagetest.PNGWithTextChunks(t, imagetest.Opaque(3, 3), "Model", "TestCam", "Comment", "hi"))
	jpegPath := imagetest.WriteFile(t, dir, "meta.jpg", imagetest.JPEGWithExif(t, imagetest.Opaque(8, 8)))
	plain := imagetest.WritePNG(t, dir, "plain.png", imagetest.Opaque(3, 3))

	res := Square(pngPath, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.MetadataEntries)

	res = Square(jpegPath, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.MetadataEntries)

	res = Square(plain, out, DefaultCompression())
	require.NoError(t, res.Err)
	assert.Zero(t, res.MetadataEntries)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	src := imagetest.WritePNG(t, dir, "wide.png", imagetest.Translucent(12, 4))

	info, err := Inspect(src)
	require.NoError(t, err)
	assert.Equal(t, 12, info.Width)
	assert.Equal(t, 4, info.Height)
	assert.True(t, info.Alpha)
	assert.Equal(t, "wide_square.png", info.OutputName)
	assert.Equal(t, "png", info.Kind.String())

	_, err = Inspect(filepath.Join(dir, "missing.png"))
	assert.True(t, errors.Is(err, ErrUnreadableImage))
}
