package square

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrUnreadableImage means the source is missing, not a regular file, or
	// not a decodable image.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrPermissionDenied means the filesystem refused a read or a write.
	ErrPermissionDenied = errors.New("permission denied")
)

// ProcessingError wraps any other failure while decoding, transforming or
// encoding an image.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func unreadable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnreadableImage, err)
}

// classify maps a filesystem or codec error onto the failure taxonomy.
func classify(path string, err error) error {
	switch {
	case errors.Is(err, ErrUnreadableImage), errors.Is(err, ErrPermissionDenied):
		return err
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		var perr *ProcessingError
		if errors.As(err, &perr) {
			return err
		}
		return &ProcessingError{Path: path, Err: err}
	}
}
