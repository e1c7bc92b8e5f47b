package liberty

import (
	"fmt"
	"strconv"
	"strings"
)

// Formatter renders a CST back to canonical text. It never mutates the
// tree. Matrix attributes get row-aligned cells; the delimiter form
// (paren vs colon) of a matrix attribute is preserved, because
// downstream EDA tools differ in what they accept.
type Formatter struct {
	IndentSize int
}

func NewFormatter(indentSize int) *Formatter {
	if indentSize <= 0 {
		indentSize = 2
	}
	return &Formatter{IndentSize: indentSize}
}

// Dump emits the whole tree, LF line endings, trailing newline.
func (f *Formatter) Dump(root *Root) (string, error) {
	var lines []string
	for _, child := range root.Children {
		if err := f.formatNode(&lines, child, nil, 0); err != nil {
			return "", err
		}
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (f *Formatter) formatNode(lines *[]string, node Node, owner *Group, indent int) error {
	switch n := node.(type) {
	case *Comment:
		*lines = append(*lines, f.indent(indent)+n.Text)
		return nil
	case *Group:
		*lines = append(*lines, fmt.Sprintf("%s%s (%s) {", f.indent(indent), n.Name, FlattenTokens(n.Args)))
		for _, child := range n.Children {
			if err := f.formatNode(lines, child, n, indent+1); err != nil {
				return err
			}
		}
		*lines = append(*lines, f.indent(indent)+"}")
		return nil
	case *Attribute:
		return f.formatAttribute(lines, n, owner, indent)
	}
	return nil
}

func (f *Formatter) formatAttribute(lines *[]string, attr *Attribute, owner *Group, indent int) error {
	if isMatrixAttribute(attr) {
		return f.formatMatrixAttribute(lines, attr, owner, indent)
	}
	value := FlattenTokens(attr.Raw)
	if attr.QuoteStyle == QuoteDouble {
		value = "\"" + value + "\""
	}
	if attr.UseParens {
		*lines = append(*lines, fmt.Sprintf("%s%s(%s);", f.indent(indent), attr.Key, value))
	} else {
		*lines = append(*lines, fmt.Sprintf("%s%s : %s;", f.indent(indent), attr.Key, value))
	}
	return nil
}

func (f *Formatter) formatMatrixAttribute(lines *[]string, attr *Attribute, owner *Group, indent int) error {
	// An index vector is one flat row of its own values; it is not shaped
	// by itself and its sibling index.
	shapeOwner := owner
	if strings.HasPrefix(attr.Key, "index_") {
		shapeOwner = nil
	}
	rows, cols, err := resolveMatrixShape(shapeOwner, attr.Raw)
	if err != nil {
		return err
	}
	flat, err := numericValues(attr.Raw)
	if err != nil {
		return FormatterError{Key: attr.Key, Message: err.Error()}
	}
	if len(flat) != rows*cols {
		return FormatterError{
			Key:     attr.Key,
			Message: fmt.Sprintf("%d values do not fit shape %dx%d", len(flat), rows, cols),
		}
	}
	aligned := alignMatrix(flat, rows, cols)

	ind := f.indent(indent)
	if rows == 1 {
		row := aligned[0]
		if attr.UseParens {
			if attr.QuoteStyle == QuoteDouble {
				row = "\"" + row + "\""
			}
			*lines = append(*lines, fmt.Sprintf("%s%s (%s);", ind, attr.Key, row))
		} else {
			// Canonical colon-form output is the quoted-string form.
			*lines = append(*lines, fmt.Sprintf("%s%s : \"%s\";", ind, attr.Key, row))
		}
		return nil
	}

	if attr.UseParens {
		*lines = append(*lines, fmt.Sprintf("%s%s ( \\", ind, attr.Key))
		rowInd := ind + f.indent(1)
		for i, row := range aligned {
			sep := ","
			if i == len(aligned)-1 {
				sep = ""
			}
			*lines = append(*lines, fmt.Sprintf("%s\"%s\"%s \\", rowInd, row, sep))
		}
		*lines = append(*lines, ind+");")
		return nil
	}

	// Colon form: first row on the header line, continuation rows aligned
	// under it, ';' on the last row.
	rowInd := ind + strings.Repeat(" ", len(attr.Key)+3)
	for i, row := range aligned {
		line := fmt.Sprintf("%s\"%s\"", rowInd, row)
		if i == 0 {
			line = fmt.Sprintf("%s%s : \"%s\"", ind, attr.Key, row)
		}
		if i == len(aligned)-1 {
			line += ";"
		} else {
			line += " \\"
		}
		*lines = append(*lines, line)
	}
	return nil
}

// isMatrixAttribute detects numeric lookup-table attributes: every
// significant token comma-splits into floats, and either the key is the
// canonical "values" or a row separator is present.
func isMatrixAttribute(attr *Attribute) bool {
	count := 0
	separators := 0
	for _, t := range attr.Raw {
		switch t.Type {
		case CommentToken:
			continue
		case EscapedNewlineToken:
			separators++
		case CommaToken:
			separators++
		case StringToken, IdentifierToken:
			for _, part := range strings.Split(t.Value, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if _, err := strconv.ParseFloat(part, 64); err != nil {
					return false
				}
				count++
			}
		default:
			return false
		}
	}
	if count == 0 {
		return false
	}
	return attr.Key == "values" || separators > 0
}

// resolveMatrixShape consults the sibling index_1/index_2 attributes of
// the owning group. With both present the matrix is len1 x len2, with
// only index_1 it is 1 x len1, and with neither it is one flat row.
func resolveMatrixShape(owner *Group, raw []Token) (rows, cols int, err error) {
	index1, err := indexLength(owner, "index_1")
	if err != nil {
		return 0, 0, err
	}
	index2, err := indexLength(owner, "index_2")
	if err != nil {
		return 0, 0, err
	}
	switch {
	case index1 > 0 && index2 > 0:
		return index1, index2, nil
	case index1 > 0:
		return 1, index1, nil
	}
	flat, err := numericValues(raw)
	if err != nil {
		return 0, 0, FormatterError{Key: "values", Message: err.Error()}
	}
	return 1, len(flat), nil
}

func indexLength(owner *Group, key string) (int, error) {
	if owner == nil {
		return 0, nil
	}
	attr := owner.Attribute(key)
	if attr == nil {
		return 0, nil
	}
	values, err := numericValues(attr.Raw)
	if err != nil {
		return 0, FormatterError{Key: key, Message: err.Error()}
	}
	return len(values), nil
}

// numericValues flattens the significant tokens to floats, splitting
// each string or identifier on commas.
func numericValues(tokens []Token) ([]float64, error) {
	var flat []float64
	for _, t := range tokens {
		if t.Type != StringToken && t.Type != IdentifierToken {
			continue
		}
		for _, part := range strings.Split(t.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("value %q is not numeric", part)
			}
			flat = append(flat, v)
		}
	}
	return flat, nil
}

// alignMatrix reflows flat values into rows x cols, formats each cell
// and right-justifies to the widest cell of its column.
func alignMatrix(flat []float64, rows, cols int) []string {
	cells := make([][]string, rows)
	widths := make([]int, cols)
	for r := 0; r < rows; r++ {
		cells[r] = make([]string, cols)
		for c := 0; c < cols; c++ {
			cell := FormatFloat(flat[r*cols+c])
			cells[r][c] = cell
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}
	result := make([]string, rows)
	for r := 0; r < rows; r++ {
		padded := make([]string, cols)
		for c := 0; c < cols; c++ {
			padded[c] = fmt.Sprintf("%*s", widths[c], cells[r][c])
		}
		result[r] = strings.Join(padded, ", ")
	}
	return result
}

// FormatFloat renders a numeric cell the way %g does: up to six
// significant digits, trailing zeros removed. Every number the system
// emits goes through here.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func (f *Formatter) indent(depth int) string {
	return strings.Repeat(" ", depth*f.IndentSize)
}
