// Package imagetest builds small synthetic images on disk for tests.
package imagetest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Opaque returns a w x h fully opaque image with a position-dependent color.
func Opaque(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 0x80, A: 0xff})
		}
	}
	return img
}

// Translucent returns a w x h straight-alpha image whose alpha varies by column.
func Translucent(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0x40 + (x*3)%0xc0)
			img.SetNRGBA(x, y, color.NRGBA{R: 0x20, G: uint8(y * 3), B: 0xc0, A: a})
		}
	}
	return img
}

// TransparentPaletted returns a paletted image whose first entry is transparent.
func TransparentPaletted(w, h int) *image.Paletted {
	palette := color.Palette{
		color.RGBA{},
		color.RGBA{R: 0xff, A: 0xff},
		color.RGBA{G: 0xff, A: 0xff},
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%3))
		}
	}
	return img
}

// WritePNG encodes img as PNG at dir/name and returns the path.
func WritePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return write(t, dir, name, buf.Bytes())
}

// WriteJPEG encodes img as JPEG at dir/name and returns the path.
func WriteJPEG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	return write(t, dir, name, EncodeJPEG(t, img))
}

// WriteGIF encodes img as GIF at dir/name and returns the path.
func WriteGIF(t testing.TB, dir, name string, img *image.Paletted) string {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return write(t, dir, name, buf.Bytes())
}

// WriteFile writes raw bytes at dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	return write(t, dir, name, data)
}

func EncodeJPEG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNGWithTextChunks encodes img as PNG and inserts one tEXt chunk per
// key/value pair before IEND.
func PNGWithTextChunks(t testing.TB, img image.Image, pairs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	insertAt := len(data) - 12

	out := append([]byte{}, data[:insertAt]...)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, PNGChunk("tEXt", []byte(pairs[i]+"\x00"+pairs[i+1]))...)
	}
	return append(out, data[insertAt:]...)
}

// JPEGWithExif encodes img as JPEG and inserts an APP1 Exif segment carrying
// a camera model and a timestamp right after SOI.
func JPEGWithExif(t testing.TB, img image.Image) []byte {
	t.Helper()
	data := EncodeJPEG(t, img)
	exif := append([]byte("Exif\x00\x00"), ExifTIFF()...)

	var seg bytes.Buffer
	seg.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&seg, binary.BigEndian, uint16(len(exif)+2))
	seg.Write(exif)

	out := append([]byte{}, data[:2]...)
	out = append(out, seg.Bytes()...)
	return append(out, data[2:]...)
}

// ExifTIFF is a little-endian TIFF block with Model and DateTime tags.
func ExifTIFF() []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0110))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(38))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0132))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(20))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(46))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte("2024:01:02 03:04:05\x00"))
	return tiff.Bytes()
}

// PNGChunk frames data as a PNG chunk with length and CRC.
func PNGChunk(chunkType string, data []byte) []byte {
	chunkTypeBytes := []byte(chunkType)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	crcBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBuf, crc32.ChecksumIEEE(append(append([]byte{}, chunkTypeBytes...), data...)))

	chunk := make([]byte, 0, 12+len(data))
	chunk = append(chunk, lenBuf...)
	chunk = append(chunk, chunkTypeBytes...)
	chunk = append(chunk, data...)
	return append(chunk, crcBuf...)
}

// Decode opens and decodes the image at path.
func Decode(t testing.TB, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img, format
}

// NRGBAAt returns the straight-alpha color of img at (x, y).
func NRGBAAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
