package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/nordsil/libpatch"
	"github.com/nordsil/libpatch/liberty"
)

var (
	formatCmd = &cobra.Command{
		Use:   "format",
		Short: "Parse a Liberty file and re-emit it in canonical, aligned form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return errors.New("--input and --output are required")
			}
			text, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}
			result, err := libpatch.Format(liberty.FileRef(inputPath), string(text), indentSize)
			if err != nil {
				return err
			}
			if err := writeDumpParse(result.Parse); err != nil {
				return err
			}
			return os.WriteFile(outputPath, []byte(result.Output), 0o644)
		},
	}
)

func writeDumpParse(parsed liberty.ParseResult) error {
	if dumpParse == "" {
		return nil
	}
	payload, err := liberty.DumpParseResult(parsed)
	if err != nil {
		return err
	}
	return os.WriteFile(dumpParse, payload, 0o644)
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
