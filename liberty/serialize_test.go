package liberty

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpParseResult(t *testing.T) {
	result := mustParse(t, "library(demo) {\n  time_unit : \"1ns\";\n  // c\n  foo (1, 2);\n}\n")
	payload, err := DumpParseResult(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	context := decoded["context"].(map[string]any)
	assert.Equal(t, "1ns", context["time_unit"])

	root := decoded["root"].(map[string]any)
	assert.Equal(t, "root", root["type"])
	library := root["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "group", library["type"])
	assert.Equal(t, "library", library["name"])

	children := library["children"].([]any)
	require.Len(t, children, 3)

	timeUnit := children[0].(map[string]any)
	assert.Equal(t, "attribute", timeUnit["type"])
	assert.Equal(t, "double", timeUnit["quote_style"])
	assert.Equal(t, false, timeUnit["use_parens"])
	tokens := timeUnit["raw_tokens"].([]any)
	first := tokens[0].(map[string]any)
	assert.Equal(t, "StringToken", first["type"])
	assert.Equal(t, "1ns", first["value"])
	assert.Equal(t, float64(2), first["line"])

	comment := children[1].(map[string]any)
	assert.Equal(t, "comment", comment["type"])
	assert.Equal(t, "// c", comment["text"])

	foo := children[2].(map[string]any)
	assert.Equal(t, true, foo["use_parens"])
}
