package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nordsil/libpatch/liberty"
)

// MatrixShapeError reports operands whose dimensions do not line up.
type MatrixShapeError struct {
	Message string
}

func (e MatrixShapeError) Error() string {
	return e.Message
}

// Layout captures how the numeric values of an array attribute were
// grouped in the source: for each row, how many values each original
// string/identifier token carried, and whether rows were separated by
// escaped newlines. Re-encoding against the layout keeps a patched
// attribute looking like the original.
type Layout struct {
	Rows              [][]int
	HasEscapedNewline bool
}

// ExtractLayout records the per-token value counts of each row.
func ExtractLayout(tokens []liberty.Token) Layout {
	var layout Layout
	var current []int
	for _, t := range tokens {
		switch t.Type {
		case liberty.EscapedNewlineToken:
			layout.HasEscapedNewline = true
			if len(current) > 0 {
				layout.Rows = append(layout.Rows, current)
				current = nil
			}
		case liberty.StringToken, liberty.IdentifierToken:
			count := 0
			for _, segment := range strings.Split(t.Value, ",") {
				if strings.TrimSpace(segment) != "" {
					count++
				}
			}
			current = append(current, count)
		}
	}
	if len(current) > 0 {
		layout.Rows = append(layout.Rows, current)
	}
	return layout
}

// DecodeRows splits the token stream into rows on escaped newlines and
// parses every string/identifier by comma-splitting. It reports what is
// there; shape validation against index_* is the caller's business.
func DecodeRows(tokens []liberty.Token) ([][]float64, error) {
	var rows [][]float64
	var current []liberty.Token
	for _, t := range tokens {
		switch t.Type {
		case liberty.EscapedNewlineToken:
			if len(current) > 0 {
				row, err := decodeRow(current)
				if err != nil {
					return nil, err
				}
				rows = append(rows, row)
				current = nil
			}
		case liberty.CommentToken:
		default:
			current = append(current, t)
		}
	}
	if len(current) > 0 {
		row, err := decodeRow(current)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(tokens []liberty.Token) ([]float64, error) {
	var row []float64
	for _, t := range tokens {
		if t.Type != liberty.StringToken && t.Type != liberty.IdentifierToken {
			continue
		}
		for _, segment := range strings.Split(t.Value, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			v, err := strconv.ParseFloat(segment, 64)
			if err != nil {
				return nil, fmt.Errorf("array cell %q is not numeric", segment)
			}
			row = append(row, v)
		}
	}
	return row, nil
}

// EncodeRows renders a matrix back to raw tokens. Quoted output re-packs
// values into the same per-row token grouping the layout recorded, when
// the row sizes still agree; otherwise each row collapses into a single
// string. Unquoted output interleaves identifier and comma tokens. Rows
// are separated by escaped newlines iff the original had them. Encoded
// tokens carry no positions.
func EncodeRows(matrix [][]float64, layout Layout, quoted bool) []liberty.Token {
	var tokens []liberty.Token
	for i, row := range matrix {
		if i > 0 && layout.HasEscapedNewline {
			tokens = append(tokens, liberty.Token{Type: liberty.EscapedNewlineToken, Value: "\\\n"})
		}
		if quoted {
			tokens = append(tokens, encodeQuotedRow(row, layoutRow(layout, i))...)
		} else {
			tokens = append(tokens, encodeUnquotedRow(row)...)
		}
	}
	return tokens
}

func layoutRow(layout Layout, index int) []int {
	if index < len(layout.Rows) {
		return layout.Rows[index]
	}
	return nil
}

func encodeQuotedRow(row []float64, counts []int) []liberty.Token {
	total := 0
	for _, count := range counts {
		total += count
	}
	if total != len(row) {
		// Layout no longer fits; emit the row as one packed string.
		counts = []int{len(row)}
	}
	var tokens []liberty.Token
	next := 0
	for _, count := range counts {
		segment := row[next : next+count]
		next += count
		parts := make([]string, len(segment))
		for i, v := range segment {
			parts[i] = liberty.FormatFloat(v)
		}
		tokens = append(tokens, liberty.Token{Type: liberty.StringToken, Value: strings.Join(parts, ",")})
	}
	return tokens
}

func encodeUnquotedRow(row []float64) []liberty.Token {
	var tokens []liberty.Token
	for i, v := range row {
		if i > 0 {
			tokens = append(tokens, liberty.Token{Type: liberty.CommaToken, Value: ","})
		}
		tokens = append(tokens, liberty.Token{Type: liberty.IdentifierToken, Value: liberty.FormatFloat(v)})
	}
	return tokens
}

// Multiply scales every cell.
func Multiply(matrix [][]float64, scalar float64) [][]float64 {
	result := make([][]float64, len(matrix))
	for r, row := range matrix {
		result[r] = make([]float64, len(row))
		for c, v := range row {
			result[r][c] = v * scalar
		}
	}
	return result
}

// AddScalar adds the scalar to every cell.
func AddScalar(matrix [][]float64, scalar float64) [][]float64 {
	result := make([][]float64, len(matrix))
	for r, row := range matrix {
		result[r] = make([]float64, len(row))
		for c, v := range row {
			result[r][c] = v + scalar
		}
	}
	return result
}

// AddMatrices adds cellwise; the operands must agree in shape.
func AddMatrices(left, right [][]float64) ([][]float64, error) {
	if len(left) != len(right) {
		return nil, MatrixShapeError{Message: fmt.Sprintf("row count mismatch: %d vs %d", len(left), len(right))}
	}
	result := make([][]float64, len(left))
	for r := range left {
		if len(left[r]) != len(right[r]) {
			return nil, MatrixShapeError{
				Message: fmt.Sprintf("column count mismatch in row %d: %d vs %d", r, len(left[r]), len(right[r])),
			}
		}
		result[r] = make([]float64, len(left[r]))
		for c := range left[r] {
			result[r][c] = left[r][c] + right[r][c]
		}
	}
	return result, nil
}
