package square

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"squarify/internal/logging"
	"squarify/pkg/imgutil"
)

var (
	opaqueBackground      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	transparentBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x00}
)

// Result is the outcome of converting one file. Exactly one of Output and
// Err is set.
type Result struct {
	Source          string
	Output          string
	Err             error
	Width           int
	Height          int
	Side            int
	Alpha           bool
	MetadataEntries int
	BytesWritten    int64
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Info describes a source image without converting it.
type Info struct {
	Path            string
	Kind            imgutil.Kind
	Width           int
	Height          int
	Alpha           bool
	MetadataEntries int
	OutputName      string
}

type source struct {
	img      image.Image
	kind     imgutil.Kind
	metadata int
}

// Square pads the image at imagePath to a square canvas and writes it into
// outputFolder as "{stem}_square{ext}", overwriting any existing file.
// Failures are reported in the Result, never returned or panicked.
func Square(imagePath, outputFolder string, cfg CompressionConfig) (res Result) {
	res = Result{Source: imagePath}
	defer func() {
		if r := recover(); r != nil {
			res.Output = ""
			res.Err = &ProcessingError{Path: imagePath, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	src, err := load(imagePath)
	if err != nil {
		res.Err = classify(imagePath, err)
		return res
	}

	bounds := src.img.Bounds()
	res.Width, res.Height = bounds.Dx(), bounds.Dy()
	res.Alpha = HasAlpha(src.img)
	res.MetadataEntries = src.metadata

	img := src.img
	if cfg.Enabled {
		img = applyCompression(img, cfg)
	}

	canvas := pad(img, res.Alpha)
	res.Side = canvas.Bounds().Dx()

	outPath := filepath.Join(outputFolder, OutputName(imagePath, res.Alpha))
	ext := filepath.Ext(outPath)
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		res.Err = classify(imagePath, err)
		return res
	}

	plan := planSave(ext, cfg)
	n, err := writeImage(canvas, outPath, format, plan.encodeOptions())
	if err != nil {
		res.Err = classify(imagePath, err)
		return res
	}

	logging.Debugf("wrote %s (%dx%d -> %dx%d, %d bytes)", outPath, res.Width, res.Height, res.Side, res.Side, n)
	res.Output = outPath
	res.BytesWritten = n
	return res
}

// Inspect decodes imagePath and reports what Square would do with it.
func Inspect(imagePath string) (Info, error) {
	src, err := load(imagePath)
	if err != nil {
		return Info{Path: imagePath}, classify(imagePath, err)
	}

	bounds := src.img.Bounds()
	alpha := HasAlpha(src.img)
	return Info{
		Path:            imagePath,
		Kind:            src.kind,
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		Alpha:           alpha,
		MetadataEntries: src.metadata,
		OutputName:      OutputName(imagePath, alpha),
	}, nil
}

func load(path string) (source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return source{}, err
		}
		return source{}, unreadable(err)
	}
	if !info.Mode().IsRegular() {
		return source{}, unreadable(fmt.Errorf("%s is not a regular file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return source{}, err
		}
		return source{}, unreadable(err)
	}
	defer f.Close()

	kind, err := imgutil.SniffReader(f)
	if err != nil {
		return source{}, unreadable(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return source{}, err
	}

	img, err := imaging.Decode(f)
	if err != nil {
		return source{}, unreadable(err)
	}

	metadata, err := countMetadata(f, kind)
	if err != nil {
		logging.Printf("metadata inspection of %s failed: %v", path, err)
		metadata = 0
	}

	return source{img: img, kind: kind, metadata: metadata}, nil
}

// pad centers img on a max(w,h) square canvas at the floor offsets.
func pad(img image.Image, alpha bool) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	side := max(w, h)
	offset := image.Pt((side-w)/2, (side-h)/2)

	if !alpha {
		canvas := imaging.New(side, side, opaqueBackground)
		return imaging.Paste(canvas, img, offset)
	}

	canvas := imaging.New(side, side, transparentBackground)
	pasteMasked(canvas, imaging.Clone(img), offset)
	return canvas
}

// pasteMasked composites src over a fully transparent dst using src's alpha
// as the mask. Over a transparent backdrop that is a copy of every pixel
// with non-zero alpha; fully transparent pixels keep the background.
func pasteMasked(dst, src *image.NRGBA, offset image.Point) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	for y := 0; y < h; y++ {
		si := y * src.Stride
		di := (y+offset.Y)*dst.Stride + offset.X*4
		for x := 0; x < w; x++ {
			if src.Pix[si+3] != 0 {
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			}
			si += 4
			di += 4
		}
	}
}

// writeImage encodes img into a temp file next to path and renames it into
// place, so a failed encode never leaves a truncated output behind.
func writeImage(img image.Image, path string, format imaging.Format, opts []imaging.EncodeOption) (int64, error) {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".squarify-*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}

	bw := bufio.NewWriter(tmpFile)
	if err := imaging.Encode(bw, img, format, opts...); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := tmpFile.Close(); err != nil {
		return 0, err
	}

	if err := replaceFile(tmpFile.Name(), path); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
