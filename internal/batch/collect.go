package batch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"squarify/pkg/imgutil"
)

type CollectOptions struct {
	// AllFiles keeps every regular file found in a directory, not only images.
	AllFiles bool
	// OutputDir is skipped while walking, so earlier results are not re-squared.
	OutputDir string
}

// Collect expands paths into the ordered list of files to convert. Files
// named explicitly are always kept, even when missing, so the converter can
// report them. Directories are walked in lexical order and filtered to image
// files by extension or, failing that, by header.
func Collect(paths []string, opts CollectOptions) ([]string, error) {
	var outputAbs string
	if opts.OutputDir != "" {
		if abs, err := filepath.Abs(opts.OutputDir); err == nil {
			outputAbs = filepath.Clean(abs)
		}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			add(root)
			continue
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}

		fsys := os.DirFS(absRoot)
		err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			fullPath := filepath.Join(root, path)
			if d.IsDir() {
				if outputAbs != "" && path != "." && isWithin(filepath.Join(absRoot, path), outputAbs) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if opts.AllFiles || isImageFile(fullPath) {
				add(fullPath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func isImageFile(path string) bool {
	if imgutil.HasImageExtension(path) {
		return true
	}
	kind, err := imgutil.SniffFile(path)
	return err == nil && kind != imgutil.KindUnknown
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
