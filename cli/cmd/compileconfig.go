package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/nordsil/libpatch/config"
)

var (
	compileConfigCmd = &cobra.Command{
		Use:   "compile-config",
		Short: "Compile a YAML patch config to the normalized JSON form",
		Long: `Resolves the selector shorthands of the YAML dialect and writes the
normalized JSON the patch engine accepts. Pattern semantics: a single
string matches as a glob (fnmatch: *, ?, [...]), a list of strings
matches as regex alternatives (unanchored search).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return errors.New("--input and --output are required")
			}
			text, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}
			compiled, err := config.CompileToJSON(text)
			if err != nil {
				return err
			}
			return os.WriteFile(outputPath, append(compiled, '\n'), 0o644)
		},
	}
)

func init() {
	rootCmd.AddCommand(compileConfigCmd)
}
