package liberty

import (
	"encoding/json"
	"fmt"
)

// Parse-dump serialization. This is a debugging surface, not a committed
// schema; it is lossless so a dumped tree can be inspected token by token.

type tokenJSON struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type nodeJSON struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Key        string      `json:"key,omitempty"`
	Text       string      `json:"text,omitempty"`
	ArgsTokens []tokenJSON `json:"args_tokens,omitempty"`
	RawTokens  []tokenJSON `json:"raw_tokens,omitempty"`
	QuoteStyle string      `json:"quote_style,omitempty"`
	UseParens  *bool       `json:"use_parens,omitempty"`
	Children   []nodeJSON  `json:"children,omitempty"`
}

type parseDumpJSON struct {
	Context contextJSON `json:"context"`
	Root    nodeJSON    `json:"root"`
}

type contextJSON struct {
	TimeUnit         string `json:"time_unit"`
	VoltageUnit      string `json:"voltage_unit"`
	LeakagePowerUnit string `json:"leakage_power_unit"`
}

// DumpParseResult serializes a ParseResult to indented JSON.
func DumpParseResult(result ParseResult) ([]byte, error) {
	payload := parseDumpJSON{
		Context: contextJSON{
			TimeUnit:         result.Context.TimeUnit,
			VoltageUnit:      result.Context.VoltageUnit,
			LeakagePowerUnit: result.Context.LeakagePowerUnit,
		},
		Root: serializeNode(result.Root),
	}
	return json.MarshalIndent(payload, "", "  ")
}

func serializeNode(node Node) nodeJSON {
	switch n := node.(type) {
	case *Root:
		return nodeJSON{Type: "root", Children: serializeChildren(n.Children)}
	case *Group:
		return nodeJSON{
			Type:       "group",
			Name:       n.Name,
			ArgsTokens: serializeTokens(n.Args),
			Children:   serializeChildren(n.Children),
		}
	case *Attribute:
		useParens := n.UseParens
		return nodeJSON{
			Type:       "attribute",
			Key:        n.Key,
			RawTokens:  serializeTokens(n.Raw),
			QuoteStyle: quoteStyleName(n.QuoteStyle),
			UseParens:  &useParens,
		}
	case *Comment:
		return nodeJSON{Type: "comment", Text: n.Text}
	}
	panic(fmt.Sprintf("unsupported node type %T", node))
}

func serializeChildren(children []Node) []nodeJSON {
	var result []nodeJSON
	for _, child := range children {
		result = append(result, serializeNode(child))
	}
	return result
}

func serializeTokens(tokens []Token) []tokenJSON {
	var result []tokenJSON
	for _, t := range tokens {
		result = append(result, tokenJSON{
			Type:   t.Type.String(),
			Value:  t.Value,
			Line:   t.Line,
			Column: t.Column,
		})
	}
	return result
}

func quoteStyleName(q QuoteStyle) string {
	if q == QuoteDouble {
		return "double"
	}
	return "none"
}
