package batch

import (
	"fmt"
	"path/filepath"

	"squarify/internal/logging"
	"squarify/internal/square"
)

type Runner struct {
	convert Converter
}

func NewRunner() *Runner {
	return &Runner{convert: square.Square}
}

// NewRunnerWith builds a Runner around a custom converter.
func NewRunnerWith(convert Converter) *Runner {
	return &Runner{convert: convert}
}

// Run converts files strictly in order, one at a time, reporting on events.
// Per file it sends a status, an error status on failure, then the progress
// fraction. It ends with the summary status followed by a single Done.
// events is never closed by Run.
func (r *Runner) Run(files []string, outputFolder string, cfg square.CompressionConfig, events chan<- Event) Summary {
	total := len(files)
	summary := Summary{Total: total, Results: make([]square.Result, 0, total)}

	for i, path := range files {
		name := filepath.Base(path)
		events <- Status(fmt.Sprintf("Processing (%d/%d): %s", i+1, total, name))

		res := r.convert(path, outputFolder, cfg)
		summary.Results = append(summary.Results, res)
		if res.Err == nil {
			summary.Succeeded++
			summary.BytesWritten += res.BytesWritten
			summary.MetadataEntries += res.MetadataEntries
		} else {
			summary.Failed++
			logging.Printf("conversion of %s failed: %v", path, res.Err)
			events <- Failure(fmt.Sprintf("Failed conversion: %s: %v", name, res.Err))
		}

		events <- Progress(float64(i+1) / float64(total))
	}

	final := fmt.Sprintf("Completed. %d succeeded, %d failed.", summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		events <- Failure(final)
	} else {
		events <- Status(final)
	}
	events <- Done()
	return summary
}
