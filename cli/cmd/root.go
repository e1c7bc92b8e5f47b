package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "libpatch",
		Short:        "libpatch",
		SilenceUsage: true,
		Long: `Structural editor for Liberty standard-cell library files: parse to a
lossless tree, re-emit in canonical form, and apply configured arithmetic
patches to lookup tables with unit validation and a provenance trail.`,
	}

	inputPath  string
	outputPath string
	indentSize int
	dumpParse  string
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "input file")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "output file")
	rootCmd.PersistentFlags().IntVar(&indentSize, "indent-size", 2, "formatter indentation size")
	rootCmd.PersistentFlags().StringVar(&dumpParse, "dump-parse", "", "optional path for a JSON dump of the parsed tree")
	return rootCmd.Execute()
}
