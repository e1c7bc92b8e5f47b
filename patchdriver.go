package libpatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nordsil/libpatch/liberty"
	"github.com/nordsil/libpatch/patch"
	"github.com/nordsil/libpatch/provenance"
)

// PatchRequest describes one patch invocation over a single input text.
type PatchRequest struct {
	File        liberty.FileRef
	Input       string
	Config      patch.Config
	Description string
	IndentSize  int

	// OutputPath is recorded in the artifact trail; it is not written
	// here, file I/O stays with the caller.
	OutputPath string

	// BatchID overrides the generated id; Sink may be nil to disable
	// provenance.
	BatchID string
	Sink    provenance.Sink
	Logger  logrus.FieldLogger
}

type PatchResult struct {
	Output  string
	Summary patch.Summary
	Parse   liberty.ParseResult
}

// ApplyPatch runs parse -> unit gate -> patch -> format, and reports to
// the provenance sink only after the output text exists. Any failure
// leaves the sink untouched.
func ApplyPatch(ctx context.Context, req PatchRequest) (PatchResult, error) {
	parsed, err := liberty.ParseString(req.File, req.Input)
	if err != nil {
		return PatchResult{}, err
	}
	runner := patch.NewRunner(req.Sink, req.BatchID, req.Logger)
	summary, err := runner.Run(parsed, req.Config)
	if err != nil {
		return PatchResult{}, err
	}
	output, err := liberty.NewFormatter(req.IndentSize).Dump(parsed.Root)
	if err != nil {
		return PatchResult{}, err
	}
	if err := runner.LogRun(ctx, req.Config, req.Description, req.Input, output, req.OutputPath); err != nil {
		return PatchResult{}, err
	}
	return PatchResult{Output: output, Summary: summary, Parse: parsed}, nil
}
