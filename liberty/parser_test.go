package liberty

import (
	"testing"

	"github.com/alecthomas/repr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) ParseResult {
	t.Helper()
	result, err := ParseString("test.lib", text)
	require.NoError(t, err)
	return result
}

func TestParseLibrary(t *testing.T) {
	result := mustParse(t, `
library(demo) {
  // header comment
  time_unit : "1ns";
  voltage_unit : "1V";
  cell(AND2_X1) {
    area : 1.064;
  }
}
`)
	require.Len(t, result.Root.Children, 1)
	library, ok := result.Root.Children[0].(*Group)
	require.True(t, ok, repr.String(result.Root))
	assert.Equal(t, "library", library.Name)
	assert.Equal(t, "demo", library.ArgName())
	require.Len(t, library.Children, 4)

	comment, ok := library.Children[0].(*Comment)
	require.True(t, ok)
	assert.Equal(t, "// header comment", comment.Text)

	timeUnit, ok := library.Children[1].(*Attribute)
	require.True(t, ok)
	assert.Equal(t, "time_unit", timeUnit.Key)
	assert.Equal(t, QuoteDouble, timeUnit.QuoteStyle)
	assert.False(t, timeUnit.UseParens)
	assert.Equal(t, "1ns", FlattenTokens(timeUnit.Raw))

	cell, ok := library.Children[3].(*Group)
	require.True(t, ok)
	assert.Equal(t, "cell", cell.Name)
	area := cell.Attribute("area")
	require.NotNil(t, area)
	assert.Equal(t, QuoteNone, area.QuoteStyle)
	assert.Equal(t, "1.064", FlattenTokens(area.Raw))
}

func TestParseContext(t *testing.T) {
	result := mustParse(t, `
library(demo) {
  time_unit : "1ns";
  voltage_unit : "1V";
  leakage_power_unit : "1nW";
}
`)
	assert.Equal(t, LibraryContext{
		TimeUnit:         "1ns",
		VoltageUnit:      "1V",
		LeakagePowerUnit: "1nW",
	}, result.Context)

	// no library group: empty context
	empty := mustParse(t, "cell(A) {\n}\n")
	assert.Equal(t, LibraryContext{}, empty.Context)
}

func TestParseParenAttribute(t *testing.T) {
	test := func(text string, check func(t *testing.T, root *Root)) func(*testing.T) {
		return func(t *testing.T) {
			result := mustParse(t, text)
			check(t, result.Root)
		}
	}

	firstAttr := func(t *testing.T, root *Root) *Attribute {
		t.Helper()
		require.NotEmpty(t, root.Children)
		attr, ok := root.Children[0].(*Attribute)
		require.True(t, ok, repr.String(root.Children[0]))
		return attr
	}

	t.Run("with semicolon", test("rise_capacitance_range (0.27, 0.44);", func(t *testing.T, root *Root) {
		attr := firstAttr(t, root)
		assert.True(t, attr.UseParens)
		assert.Equal(t, "0.27, 0.44", FlattenTokens(attr.Raw))
	}))

	t.Run("terminated by line break", test("foo (1)\nbar (2);", func(t *testing.T, root *Root) {
		require.Len(t, root.Children, 2)
	}))

	t.Run("terminated by end of input", test("foo (1)", func(t *testing.T, root *Root) {
		attr := firstAttr(t, root)
		assert.Equal(t, "1", FlattenTokens(attr.Raw))
	}))

	t.Run("terminated by closing brace", test("g () { foo (1) }", func(t *testing.T, root *Root) {
		group, ok := root.Children[0].(*Group)
		require.True(t, ok)
		require.Len(t, group.Children, 1)
	}))

	t.Run("quote style from string arg", test(`define ("a");`, func(t *testing.T, root *Root) {
		attr := firstAttr(t, root)
		assert.Equal(t, QuoteDouble, attr.QuoteStyle)
	}))
}

func TestParseGroupVsAttribute(t *testing.T) {
	// name(args){ is a group; name(args); is an attribute. The brace may
	// sit on the next line.
	result := mustParse(t, "foo (a)\n{\n  bar (1);\n}\n")
	group, ok := result.Root.Children[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, "foo", group.Name)
	require.Len(t, group.Children, 1)
	_, ok = group.Children[0].(*Attribute)
	assert.True(t, ok)
}

func TestParseColonAttributeTermination(t *testing.T) {
	t.Run("newline terminates without semicolon", func(t *testing.T) {
		result := mustParse(t, "a : 1\nb : 2;\n")
		require.Len(t, result.Root.Children, 2)
		a := result.Root.Children[0].(*Attribute)
		assert.Equal(t, "1", FlattenTokens(a.Raw))
	})

	t.Run("escaped newline joins lines", func(t *testing.T) {
		result := mustParse(t, "values : \"1, 2\" \\\n\"3, 4\";\n")
		require.Len(t, result.Root.Children, 1)
		attr := result.Root.Children[0].(*Attribute)
		assert.Equal(t, QuoteDouble, attr.QuoteStyle)
		require.Len(t, attr.Raw, 3)
		assert.Equal(t, EscapedNewlineToken, attr.Raw[1].Type)
	})

	t.Run("unquoted continuation", func(t *testing.T) {
		result := mustParse(t, "idx : 1, \\\n2, 3;\n")
		attr := result.Root.Children[0].(*Attribute)
		assert.Equal(t, "1, 2, 3", FlattenTokens(attr.Raw))
	})

	t.Run("end of input after value", func(t *testing.T) {
		result := mustParse(t, "a : 1")
		attr := result.Root.Children[0].(*Attribute)
		assert.Equal(t, "1", FlattenTokens(attr.Raw))
	})
}

func TestParseErrors(t *testing.T) {
	testErr := func(text, contains string) func(*testing.T) {
		return func(t *testing.T) {
			_, err := ParseString("test.lib", text)
			require.Error(t, err)
			var parseErr ParserError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), contains)
			assert.Contains(t, err.Error(), "test.lib:")
		}
	}

	t.Run("unexpected token", testErr("( x )", "unexpected token"))
	t.Run("bare identifier", testErr("foo ;", "expected ':' or '('"))
	t.Run("unclosed group", testErr("g () {\n  a : 1;\n", "never closed"))
	t.Run("unclosed paren", testErr("foo (1, 2", "unclosed '('"))
	t.Run("missing terminator after paren attribute", testErr("g () { foo (1) bar (2); }", "expected ';'"))
	t.Run("attribute cut off after colon", testErr("a :", "unexpected end of input"))
	t.Run("brace in colon rhs", testErr("g () { a : 1 }", "expected ';'"))
}
