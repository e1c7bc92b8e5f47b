// Package libpatch ties the Liberty parser, formatter and patch engine
// together into the two operations the CLI exposes: normalizing a file
// and applying a patch config with provenance logging.
package libpatch

import (
	"github.com/nordsil/libpatch/liberty"
)

// FormatResult carries the canonical text plus the parse it came from,
// so callers can also dump the CST.
type FormatResult struct {
	Output string
	Parse  liberty.ParseResult
}

// Format parses and re-emits a Liberty document in canonical form.
func Format(file liberty.FileRef, text string, indentSize int) (FormatResult, error) {
	parsed, err := liberty.ParseString(file, text)
	if err != nil {
		return FormatResult{}, err
	}
	output, err := liberty.NewFormatter(indentSize).Dump(parsed.Root)
	if err != nil {
		return FormatResult{}, err
	}
	return FormatResult{Output: output, Parse: parsed}, nil
}
