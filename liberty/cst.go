package liberty

import "strings"

// dedicated type for reference to file, in case we need to refactor this later..
type FileRef string

type Pos struct {
	File      FileRef
	Line, Col int
}

// Token is one lexical item of a Liberty file. Line and Column locate the
// first character of the token in the input; tokens synthesised by the
// patch engine carry 0,0.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

// WithoutPos zeroes the position, for assertions that only care about
// token content.
func (t Token) WithoutPos() Token {
	return Token{Type: t.Type, Value: t.Value}
}

func TokensWithoutPos(tokens []Token) []Token {
	var result []Token
	for _, t := range tokens {
		result = append(result, t.WithoutPos())
	}
	return result
}

type QuoteStyle int

const (
	QuoteNone QuoteStyle = iota
	QuoteDouble
)

// Node is the closed set of CST node variants: *Root, *Group, *Attribute
// and *Comment. Parents own children; nothing points back up. The handful
// of places that need sibling context (matrix shape resolution) receive
// the owning *Group explicitly.
type Node interface {
	node()
}

type Root struct {
	Children []Node
}

// Group is a named block: name(args...) { children }. Args holds the raw
// tokens between the header parens, commas and strings included.
type Group struct {
	Name     string
	Args     []Token
	Children []Node
}

// Attribute is a key/value entry. Raw holds the untyped RHS tokens; for a
// parenthesized attribute these are exactly the tokens between the outer
// parens. Numeric matrix semantics are imposed only at format/patch time,
// which keeps the CST lossless for unfamiliar keys.
type Attribute struct {
	Key        string
	Raw        []Token
	QuoteStyle QuoteStyle
	UseParens  bool
}

type Comment struct {
	Text string
}

func (*Root) node()      {}
func (*Group) node()     {}
func (*Attribute) node() {}
func (*Comment) node()   {}

// ArgName returns the first argument token's value, or "" for an empty
// argument tuple. Selectors match group instance names against this.
func (g *Group) ArgName() string {
	if len(g.Args) == 0 {
		return ""
	}
	return g.Args[0].Value
}

// Attribute returns the first direct child attribute with the given key.
func (g *Group) Attribute(key string) *Attribute {
	for _, child := range g.Children {
		if attr, ok := child.(*Attribute); ok && attr.Key == key {
			return attr
		}
	}
	return nil
}

// LibraryContext carries the unit declarations scanned from the top-level
// library(...) group. Empty string means the unit was not declared.
type LibraryContext struct {
	TimeUnit         string
	VoltageUnit      string
	LeakagePowerUnit string
}

// FlattenTokens joins the significant tokens to a display value:
// identifiers and string bodies are space-separated, a comma is glued to
// the preceding piece. Comments and line continuations are dropped.
func FlattenTokens(tokens []Token) string {
	value := ""
	for _, t := range tokens {
		switch t.Type {
		case CommaToken:
			value = strings.TrimRight(value, " ") + ","
		case StringToken, IdentifierToken:
			value = strings.TrimSpace(value + " " + t.Value)
		}
	}
	return value
}
