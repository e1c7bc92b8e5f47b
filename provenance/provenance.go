// Package provenance records what the patch engine did: one batch
// record per run, followed by the artifacts the run produced. The
// runner only sees the Sink interface and does not know the storage
// form.
package provenance

import (
	"context"
	"time"
)

// BatchOp describes one provenance-logged invocation of the patch
// engine against a single input file.
type BatchOp struct {
	BatchID       string    `db:"batch_id"`
	Description   string    `db:"description"`
	ConfigJSON    string    `db:"config_json"`
	ExpectedUnits string    `db:"expected_units"`
	Timestamp     time.Time `db:"timestamp"`
}

// Artifact ties an output file to its batch with content hashes of the
// input and output texts (sha-256, hex).
type Artifact struct {
	BatchID    string `db:"batch_id"`
	FilePath   string `db:"file_path"`
	InputHash  string `db:"input_hash"`
	OutputHash string `db:"output_hash"`
	Status     string `db:"status"`
}

// Sink is the write-only interface the patch runner reports to. A run
// logs one batch followed by a batch of artifact records; sinks backed
// by persistent stores serialize their own writes.
type Sink interface {
	LogBatch(ctx context.Context, batch BatchOp) error
	LogArtifacts(ctx context.Context, artifacts []Artifact) error
}
