package square

import (
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"squarify/internal/logging"
)

// alphaExt is used for every alpha-bearing output and for unknown inputs.
const alphaExt = ".png"

var safeExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
}

// HasAlpha reports whether img needs an alpha-preserving canvas: it is of a
// straight-alpha type, a paletted image with a transparent entry, or any
// other image that does not report itself opaque.
func HasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA, *image.Alpha, *image.Alpha16:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	case interface{ Opaque() bool }:
		return !m.Opaque()
	default:
		return false
	}
}

// OutputName returns the file name written for source: "{stem}_square{ext}".
func OutputName(source string, alpha bool) string {
	stem, ext := splitExt(filepath.Base(source))
	return stem + "_square" + outputExtension(ext, alpha)
}

func outputExtension(ext string, alpha bool) string {
	if alpha {
		return alphaExt
	}
	ext = strings.ToLower(ext)
	if safeExtensions[ext] {
		return ext
	}
	return alphaExt
}

// splitExt follows the usual convention that a leading dot belongs to the
// stem, so ".hidden" has no extension.
func splitExt(base string) (string, string) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || strings.Trim(stem, ".") == "" {
		return base, ""
	}
	return stem, ext
}

func isJPEGExt(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg"
}

// savePlan is the set of encoder settings derived from a config for one
// output extension. Zero values mean codec defaults.
type savePlan struct {
	Quality         int
	BestCompression bool
}

func planSave(ext string, cfg CompressionConfig) savePlan {
	plan := savePlan{}
	if !cfg.Enabled {
		return plan
	}

	if cfg.StripMetadata.Enabled {
		logging.Println("Stripping metadata (encoders never copy source metadata)")
	}

	if cfg.Optimize.Enabled {
		if ext == alphaExt {
			plan.BestCompression = true
			logging.Println("Applying save optimization")
		} else {
			logging.Printf("Skipping optimize: no encoder setting for %s output", ext)
		}
	}

	if cfg.JPEGQuality.Enabled {
		if isJPEGExt(ext) {
			plan.Quality = clamp(cfg.JPEGQuality.Value, MinQuality, MaxQuality)
			logging.Printf("Applying JPEG quality: %d", plan.Quality)
		} else {
			logging.Println("Skipping JPEG quality: Output is not JPEG.")
		}
	}

	return plan
}

func (p savePlan) encodeOptions() []imaging.EncodeOption {
	var opts []imaging.EncodeOption
	if p.Quality > 0 {
		opts = append(opts, imaging.JPEGQuality(p.Quality))
	}
	if p.BestCompression {
		opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
	}
	return opts
}
