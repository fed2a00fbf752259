package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"squarify/internal/app"
	"squarify/internal/batch"
	"squarify/internal/logging"
	"squarify/internal/square"
	"squarify/internal/tui"
)

var errInterrupted = errors.New("interrupted")

var (
	squareOutput   string
	squareCompress bool
	squareStrip    bool
	squareOptimize bool
	squareQuality  int
	squareColors   int
	squareSettings []string
	squarePreset   string
	squareAllFiles bool
	squarePlain    bool
)

var squareCmd = &cobra.Command{
	Use:   "square [flags] <path>...",
	Short: "Pad images to a square canvas",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if squareOutput == "" {
			return fmt.Errorf("--output is required")
		}

		cfg, err := compressionFromFlags(cmd)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(squareOutput, 0o755); err != nil {
			return err
		}

		files, err := batch.Collect(args, batch.CollectOptions{AllFiles: squareAllFiles, OutputDir: squareOutput})
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no image files found")
		}

		plain := squarePlain || !isTerminal(os.Stdout)
		if err := logging.Setup(logging.Options{File: logFile, Quiet: !plain, Debug: logDebug}); err != nil {
			return err
		}
		defer logging.Close()

		state := app.NewState()
		state.SelectFiles(files)
		state.SelectOutputFolder(squareOutput)
		state.SetConfig(cfg)

		run, err := state.Start()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if plain {
			if err := tui.Print(out, run.Events); err != nil {
				return err
			}
		} else {
			program := tea.NewProgram(tui.NewModel(run.Events), tea.WithOutput(out))
			final, err := program.Run()
			if err != nil {
				return err
			}
			if model, ok := final.(tui.Model); ok && model.Interrupted() {
				return errInterrupted
			}
		}

		summary := run.Wait()
		fmt.Fprintln(out, tui.RenderSummary(summaryRows(summary)))

		outPath := squareOutput
		if abs, absErr := filepath.Abs(squareOutput); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(out, "Squared images written to: %s\n", outPath)
		return nil
	},
}

func compressionFromFlags(cmd *cobra.Command) (square.CompressionConfig, error) {
	cfg := square.DefaultCompression()
	if squarePreset != "" {
		preset, err := square.LoadPreset(squarePreset)
		if err != nil {
			return cfg, err
		}
		cfg = preset
	}

	flags := cmd.Flags()
	if flags.Changed("strip-metadata") {
		cfg.StripMetadata.Enabled = squareStrip
		cfg.Enabled = cfg.Enabled || squareStrip
	}
	if flags.Changed("optimize") {
		cfg.Optimize.Enabled = squareOptimize
		cfg.Enabled = cfg.Enabled || squareOptimize
	}
	if flags.Changed("quality") {
		cfg.JPEGQuality = square.QualityOption{Enabled: true, Value: squareQuality}
		cfg.Enabled = true
	}
	if flags.Changed("colors") {
		cfg.Quantize = square.QuantizeOption{Enabled: true, Colors: squareColors}
		cfg.Enabled = true
	}
	if flags.Changed("compress") {
		cfg.Enabled = squareCompress
	}
	cfg.Normalize()

	for _, setting := range squareSettings {
		option, field, value, err := square.ParseSetting(setting)
		if err != nil {
			return cfg, err
		}
		if err := cfg.Update(option, field, value); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func summaryRows(summary batch.Summary) []tui.SummaryRow {
	return []tui.SummaryRow{
		{Label: "Files processed", Value: fmt.Sprintf("%d", summary.Total)},
		{Label: "Succeeded", Value: fmt.Sprintf("%d", summary.Succeeded)},
		{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed), Warn: summary.Failed > 0},
		{Label: "Metadata entries dropped", Value: fmt.Sprintf("%d", summary.MetadataEntries)},
		{Label: "Bytes written", Value: fmt.Sprintf("%d", summary.BytesWritten)},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	squareCmd.Flags().StringVarP(&squareOutput, "output", "o", "", "destination folder for squared copies")
	squareCmd.Flags().BoolVarP(&squareCompress, "compress", "c", false, "master switch for compression options")
	squareCmd.Flags().BoolVar(&squareStrip, "strip-metadata", false, "drop EXIF and similar metadata (enables compression)")
	squareCmd.Flags().BoolVar(&squareOptimize, "optimize", false, "use the encoder's smallest lossless setting (enables compression)")
	squareCmd.Flags().IntVarP(&squareQuality, "quality", "q", square.DefaultQuality, "JPEG quality 1-100 (enables compression)")
	squareCmd.Flags().IntVar(&squareColors, "colors", square.DefaultColors, "reduce to about this many colors, 2-256 (enables compression)")
	squareCmd.Flags().StringArrayVar(&squareSettings, "set", nil, "apply a setting as option.field=value, e.g. quantize.colors=64")
	squareCmd.Flags().StringVar(&squarePreset, "preset", "", "YAML file with compression settings")
	squareCmd.Flags().BoolVar(&squareAllFiles, "all-files", false, "include non-image files found in directories")
	squareCmd.Flags().BoolVar(&squarePlain, "plain", false, "print plain status lines instead of the progress view")

	rootCmd.AddCommand(squareCmd)
}
