package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.Mutex
	closer  io.Closer
	verbose bool
)

// Options controls where log output goes.
type Options struct {
	// File routes output to a rotating log file when set.
	File string
	// Quiet discards output when no file is configured; used while the
	// progress view owns the terminal.
	Quiet bool
	// Debug enables Debugf output.
	Debug bool
}

// Setup points the standard logger at the destination described by opts.
func Setup(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	verbose = opts.Debug

	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		}
		closer = rotating
		log.SetOutput(rotating)
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	case opts.Quiet:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
		log.SetFlags(log.Ltime)
	}
	return nil
}

// Close flushes and releases the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	log.SetOutput(os.Stderr)
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	_ = log.Output(2, fmt.Sprintln(v...))
}

// Debugf logs with a [DEBUG] prefix when debug output is enabled.
func Debugf(format string, v ...interface{}) {
	mu.Lock()
	on := verbose
	mu.Unlock()
	if !on {
		return
	}
	_ = log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
}
