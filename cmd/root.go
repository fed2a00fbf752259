package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	logFile  string
	logDebug bool
)

var rootCmd = &cobra.Command{
	Use:           "squarify",
	Short:         "squarify ⬛ - pad images to a square canvas",
	Long:          "squarify ⬛ centers images on a square canvas, optionally compressing them on the way out.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotating file")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "include debug log output")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
