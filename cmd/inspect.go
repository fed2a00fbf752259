package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"squarify/internal/batch"
	"squarify/internal/logging"
	"squarify/internal/square"
	"squarify/internal/tui"
)

var inspectAllFiles bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>...",
	Short: "Report how images would be squared without writing anything",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Setup(logging.Options{File: logFile, Debug: logDebug}); err != nil {
			return err
		}
		defer logging.Close()

		files, err := batch.Collect(args, batch.CollectOptions{AllFiles: inspectAllFiles})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, path := range files {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s\n", inspectFileStyle.Render(path))

			logging.Debugf("inspecting %s", path)
			info, err := square.Inspect(path)
			if err != nil {
				fmt.Fprintf(out, "  %s %s\n", inspectBulletStyle.Render("-"), inspectErrorStyle.Render(err.Error()))
				continue
			}

			mode := "opaque"
			if info.Alpha {
				mode = "alpha"
			}
			side := max(info.Width, info.Height)
			rows := []string{
				fmt.Sprintf("%s, %dx%d, %s", info.Kind, info.Width, info.Height, mode),
				fmt.Sprintf("canvas: %dx%d", side, side),
				fmt.Sprintf("output: %s", info.OutputName),
				fmt.Sprintf("metadata entries: %d", info.MetadataEntries),
			}
			for _, row := range rows {
				fmt.Fprintf(out, "  %s %s\n", inspectBulletStyle.Render("-"), inspectValueStyle.Render(row))
			}
		}
		return nil
	},
}

var (
	inspectFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectErrorStyle  = lipgloss.NewStyle().Foreground(tui.ColorError)
	inspectBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectAllFiles, "all-files", false, "include non-image files found in directories")

	rootCmd.AddCommand(inspectCmd)
}
