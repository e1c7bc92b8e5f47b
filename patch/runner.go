package patch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nordsil/libpatch/liberty"
	"github.com/nordsil/libpatch/provenance"
)

// PatchActionError reports an unknown or missing operation, mode or
// value in a modification's action.
type PatchActionError struct {
	Message string
}

func (e PatchActionError) Error() string {
	return e.Message
}

// Summary is what a successful run reports back.
type Summary struct {
	BatchID        string
	ModifiedGroups int
}

// Runner drives one patch invocation: unit gate first, then scope
// resolution and matrix rewriting for each modification. Mutation
// happens in place on the parsed tree; the caller formats afterwards.
type Runner struct {
	sink    provenance.Sink
	batchID string
	logger  logrus.FieldLogger
}

// NewRunner builds a runner. sink may be nil to disable provenance;
// batchID may be empty to get a fresh one.
func NewRunner(sink provenance.Sink, batchID string, logger logrus.FieldLogger) *Runner {
	if batchID == "" {
		batchID = "batch-" + uuid.Must(uuid.NewV4()).String()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{sink: sink, batchID: batchID, logger: logger}
}

func (r *Runner) BatchID() string {
	return r.batchID
}

// Run validates units and applies every modification. Any error aborts
// the run; partial application is never reported as success, and the
// unit gate guarantees no mutation has happened on a unit mismatch.
func (r *Runner) Run(result liberty.ParseResult, config Config) (Summary, error) {
	if err := ValidateUnits(result.Context, config.ExpectedUnits); err != nil {
		return Summary{}, err
	}
	modified := 0
	for _, modification := range config.Modifications {
		groups, err := ResolveScope(result.Root, modification.Scope, true)
		if err != nil {
			return Summary{}, err
		}
		for _, group := range groups {
			if err := r.applyAction(group, modification.Action); err != nil {
				return Summary{}, err
			}
			modified++
		}
	}
	r.logger.WithFields(logrus.Fields{
		"batch_id": r.batchID,
		"groups":   modified,
	}).Debug("patch applied")
	return Summary{BatchID: r.batchID, ModifiedGroups: modified}, nil
}

// applyAction rewrites every matching attribute in the group's subtree,
// preserving each attribute's original array layout and quoting.
func (r *Runner) applyAction(group *liberty.Group, action Action) error {
	key := action.AttributeKey()
	stack := []*liberty.Group{group}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range current.Children {
			switch n := child.(type) {
			case *liberty.Group:
				stack = append(stack, n)
			case *liberty.Attribute:
				if n.Key != key {
					continue
				}
				if err := applyActionToAttribute(n, action); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func applyActionToAttribute(attr *liberty.Attribute, action Action) error {
	layout := ExtractLayout(attr.Raw)
	matrix, err := DecodeRows(attr.Raw)
	if err != nil {
		return PatchActionError{Message: fmt.Sprintf("attribute %q: %s", attr.Key, err)}
	}
	updated, err := applyOperation(matrix, action)
	if err != nil {
		return err
	}
	attr.Raw = EncodeRows(updated, layout, attr.QuoteStyle == liberty.QuoteDouble)
	return nil
}

func applyOperation(matrix [][]float64, action Action) ([][]float64, error) {
	if action.Operation == "" {
		return nil, PatchActionError{Message: "missing operation in action"}
	}
	if action.Value == nil {
		return nil, PatchActionError{Message: "missing value in action"}
	}
	mode := action.Mode
	if mode == "" {
		mode = "broadcast"
	}
	switch action.Operation {
	case "multiply":
		if mode != "broadcast" {
			return nil, PatchActionError{Message: fmt.Sprintf("unsupported mode for multiply: %s", mode)}
		}
		scalar, err := scalarValue(action)
		if err != nil {
			return nil, err
		}
		return Multiply(matrix, scalar), nil
	case "add":
		switch mode {
		case "broadcast":
			scalar, err := scalarValue(action)
			if err != nil {
				return nil, err
			}
			return AddScalar(matrix, scalar), nil
		case "matrix":
			if action.Value.Matrix == nil {
				return nil, PatchActionError{Message: "matrix mode requires a matrix value"}
			}
			return AddMatrices(matrix, action.Value.Matrix)
		}
		return nil, PatchActionError{Message: fmt.Sprintf("unsupported mode for add: %s", mode)}
	}
	return nil, PatchActionError{Message: fmt.Sprintf("unsupported operation: %s", action.Operation)}
}

func scalarValue(action Action) (float64, error) {
	if action.Value.Scalar == nil {
		return 0, PatchActionError{Message: fmt.Sprintf("broadcast %s requires a numeric value", action.Operation)}
	}
	return *action.Value.Scalar, nil
}

// LogRun reports a successful run to the provenance sink: the batch
// record, then one artifact tying the output file to the input and
// output content hashes. No-op without a sink.
func (r *Runner) LogRun(ctx context.Context, config Config, description, inputText, outputText, outputPath string) error {
	if r.sink == nil {
		return nil
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return err
	}
	unitsJSON, err := json.Marshal(config.ExpectedUnits)
	if err != nil {
		return err
	}
	if err := r.sink.LogBatch(ctx, provenance.BatchOp{
		BatchID:       r.batchID,
		Description:   description,
		ConfigJSON:    string(configJSON),
		ExpectedUnits: string(unitsJSON),
	}); err != nil {
		return err
	}
	return r.sink.LogArtifacts(ctx, []provenance.Artifact{{
		BatchID:    r.batchID,
		FilePath:   outputPath,
		InputHash:  HashText(inputText),
		OutputHash: HashText(outputText),
		Status:     "ok",
	}})
}

// HashText is the sha-256 hex digest used for artifact records.
func HashText(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
