package liberty

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func format(t *testing.T, text string) string {
	t.Helper()
	result := mustParse(t, text)
	output, err := NewFormatter(2).Dump(result.Root)
	require.NoError(t, err)
	return output
}

func TestFormatPreservesUnquotedPair(t *testing.T) {
	output := format(t, "cell(A) { rise_capacitance_range (0.276893, 0.440626); }")
	assert.Contains(t, output, "rise_capacitance_range (0.276893, 0.440626);")
}

func TestFormatSingleRowValuesStayInline(t *testing.T) {
	output := format(t, "cell(A) { index_1 : 0.1, 0.2, 0.3; values ( 1,2,3 ); }")
	assert.Contains(t, output, "values (1, 2, 3);")
	// colon-form numeric lists canonicalise to the quoted-string form
	assert.Contains(t, output, "index_1 : \"0.1, 0.2, 0.3\";")
}

func TestFormatMultiRowQuotedMatrixAligns(t *testing.T) {
	output := format(t, "cell(A) { index_1 : 0.1, 0.2; index_2 : 1, 2; values ( \"1,2\" \\\n\"3,4\" ); }")
	assert.Contains(t, output, "values ( \\")
	assert.Contains(t, output, "    \"1, 2\", \\")
	assert.Contains(t, output, "    \"3, 4\" \\")
	assert.Contains(t, output, ");")
}

func TestFormatMatrixColumnAlignment(t *testing.T) {
	output := format(t, "cell(A) { index_1 : 1, 2; index_2 : 1, 2; values ( \"100,2\" \\\n\"3,40\" ); }")
	assert.Contains(t, output, "\"100,  2\", \\")
	assert.Contains(t, output, "\"  3, 40\" \\")
}

func TestFormatColonMatrixKeepsColonForm(t *testing.T) {
	output := format(t, "cell(A) {\n  index_1 : 1, 2;\n  index_2 : 1, 2;\n  values : \"1, 2\" \\\n\"3, 4\";\n}\n")
	assert.Contains(t, output, "values : \"1, 2\" \\")
	assert.Contains(t, output, "           \"3, 4\";")
	assert.NotContains(t, output, "values (")
}

func TestFormatGroupHeaderAndIndent(t *testing.T) {
	output := format(t, "library(demo) { cell(AND2_X1) { area : 1.064; } }")
	assert.Equal(t, "library (demo) {\n  cell (AND2_X1) {\n    area : 1.064;\n  }\n}\n", output)
}

func TestFormatComments(t *testing.T) {
	output := format(t, "library(demo) {\n  // keep me\n  /* and\n me */\n}\n")
	assert.Contains(t, output, "  // keep me")
	assert.Contains(t, output, "  /* and\n me */")
}

func TestFormatQuotedScalarAttribute(t *testing.T) {
	output := format(t, "library(demo) { default_wire_load : \"5K_hvratio_1_1\"; }")
	assert.Contains(t, output, "default_wire_load : \"5K_hvratio_1_1\";")
}

func TestFormatNonNumericParenAttribute(t *testing.T) {
	output := format(t, "library(demo) { define (process_corner, operating_conditions, string); }")
	assert.Contains(t, output, "define(process_corner, operating_conditions, string);")
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"cell(A) { rise_capacitance_range (0.276893, 0.440626); }",
		"cell(A) { index_1 : 0.1, 0.2, 0.3; values ( 1,2,3 ); }",
		"cell(A) { index_1 : 0.1, 0.2; index_2 : 1, 2; values ( \"1,2\" \\\n\"3,4\" ); }",
		"library(demo) {\n  // c\n  time_unit : \"1ns\";\n  cell(X) { values : \"1, 2\";\n}\n}\n",
	}
	for _, input := range inputs {
		once := format(t, input)
		twice := format(t, once)
		assert.Equal(t, once, twice, "formatting is not idempotent for %q", input)
	}
}

func TestFormatShapeMismatch(t *testing.T) {
	result := mustParse(t, "cell(A) { index_1 : 0.1, 0.2; index_2 : 1, 2; values ( 1, 2, 3 ); }")
	_, err := NewFormatter(2).Dump(result.Root)
	require.Error(t, err)
	var formatterErr FormatterError
	require.ErrorAs(t, err, &formatterErr)
	assert.Contains(t, err.Error(), "3 values do not fit shape 2x2")
}

func TestFormatIndentSize(t *testing.T) {
	result := mustParse(t, "library(demo) { cell(A) { area : 1; } }")
	output, err := NewFormatter(4).Dump(result.Root)
	require.NoError(t, err)
	assert.True(t, strings.Contains(output, "    cell (A) {"))
	assert.True(t, strings.Contains(output, "        area : 1;"))
}

func TestFormatFloatShortens(t *testing.T) {
	assert.Equal(t, "0.3", FormatFloat(0.2+0.1))
	assert.Equal(t, "1.1", FormatFloat(1.1))
	assert.Equal(t, "0.276893", FormatFloat(0.276893))
	assert.Equal(t, "100", FormatFloat(100.0))
}
