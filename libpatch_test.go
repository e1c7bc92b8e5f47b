package libpatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordsil/libpatch"
	"github.com/nordsil/libpatch/config"
	"github.com/nordsil/libpatch/patch"
	"github.com/nordsil/libpatch/provenance"
)

type recordingSink struct {
	batches   []provenance.BatchOp
	artifacts [][]provenance.Artifact
}

func (r *recordingSink) LogBatch(_ context.Context, batch provenance.BatchOp) error {
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recordingSink) LogArtifacts(_ context.Context, artifacts []provenance.Artifact) error {
	r.artifacts = append(r.artifacts, artifacts)
	return nil
}

const demoLibrary = `library(demo) {
  time_unit : "1ns";
  voltage_unit : "1V";
  cell(AND2_X1) {
    area : 1.064;
    pin(ZN) {
      direction : output;
      timing() {
        cell_rise(delay_template) {
          index_1 : 0.1, 0.2;
          index_2 : 1, 2;
          values ( "1,2" \
"3,4" );
        }
      }
    }
  }
}
`

func TestFormatEndToEnd(t *testing.T) {
	result, err := libpatch.Format("demo.lib", demoLibrary, 2)
	require.NoError(t, err)

	assert.Contains(t, result.Output, "library (demo) {")
	assert.Contains(t, result.Output, "time_unit : \"1ns\";")
	assert.Contains(t, result.Output, "values ( \\")
	assert.Contains(t, result.Output, "\"1, 2\", \\")
	assert.Contains(t, result.Output, "\"3, 4\" \\")
	assert.Equal(t, "1ns", result.Parse.Context.TimeUnit)

	// formatting is a fixed point
	again, err := libpatch.Format("demo.lib", result.Output, 2)
	require.NoError(t, err)
	assert.Equal(t, result.Output, again.Output)
}

func compileConfig(t *testing.T, yamlText string) patch.Config {
	t.Helper()
	cfg, err := config.Compile([]byte(yamlText))
	require.NoError(t, err)
	return cfg
}

func TestPatchEndToEnd(t *testing.T) {
	cfg := compileConfig(t, `
expected_units:
  time_unit: "1ns"
modifications:
  - scope:
      path:
        - group: library
        - cell: "AND2_*"
    action:
      operation: multiply
      mode: broadcast
      value: 2
`)

	sink := &recordingSink{}
	result, err := libpatch.ApplyPatch(context.Background(), libpatch.PatchRequest{
		File:        "demo.lib",
		Input:       demoLibrary,
		Config:      cfg,
		Description: "double the rise tables",
		IndentSize:  2,
		OutputPath:  "demo.out.lib",
		Sink:        sink,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.ModifiedGroups)
	assert.Contains(t, result.Output, "\"2, 4\", \\")
	assert.Contains(t, result.Output, "\"6, 8\" \\")

	require.Len(t, sink.batches, 1)
	assert.Equal(t, result.Summary.BatchID, sink.batches[0].BatchID)
	assert.Equal(t, "double the rise tables", sink.batches[0].Description)

	require.Len(t, sink.artifacts, 1)
	artifact := sink.artifacts[0][0]
	assert.Equal(t, "demo.out.lib", artifact.FilePath)
	assert.Equal(t, patch.HashText(demoLibrary), artifact.InputHash)
	assert.Equal(t, patch.HashText(result.Output), artifact.OutputHash)
}

func TestPatchUnitMismatchLeavesEverythingUntouched(t *testing.T) {
	cfg := compileConfig(t, `
expected_units:
  time_unit: "2ns"
modifications:
  - scope:
      path:
        - group: library
    action:
      operation: multiply
      value: 2
`)

	sink := &recordingSink{}
	_, err := libpatch.ApplyPatch(context.Background(), libpatch.PatchRequest{
		File:   "demo.lib",
		Input:  demoLibrary,
		Config: cfg,
		Sink:   sink,
	})

	var unitErr patch.UnitMismatchError
	require.ErrorAs(t, err, &unitErr)
	assert.Empty(t, sink.batches)
	assert.Empty(t, sink.artifacts)

	// the input itself still formats to the same text as before the
	// failed run would have produced from an untouched tree
	formatted, err := libpatch.Format("demo.lib", demoLibrary, 2)
	require.NoError(t, err)
	assert.Contains(t, formatted.Output, "\"1, 2\", \\")
}

func TestPatchScopeMismatchReportsSelector(t *testing.T) {
	cfg := compileConfig(t, `
modifications:
  - scope:
      path:
        - group: library
        - cell: "NAND*"
    action:
      operation: multiply
      value: 2
`)

	_, err := libpatch.ApplyPatch(context.Background(), libpatch.PatchRequest{
		File:   "demo.lib",
		Input:  demoLibrary,
		Config: cfg,
	})
	var scopeErr patch.ScopeMatchError
	require.ErrorAs(t, err, &scopeErr)
	assert.Contains(t, err.Error(), "NAND*")
}
