package liberty

import "fmt"

// ParseResult couples the lossless tree with the unit context scanned
// from the top-level library group.
type ParseResult struct {
	Root    *Root
	Context LibraryContext
}

// Parse tokenizes and parses a Liberty document.
func Parse(text string) (ParseResult, error) {
	return ParseString("", text)
}

// ParseString is Parse with a file reference attached to positions in
// error messages.
func ParseString(file FileRef, text string) (ParseResult, error) {
	tokens, err := NewLexer(file, text).Tokenize()
	if err != nil {
		return ParseResult{}, err
	}
	p := &parser{tokens: tokens, file: file}
	root, err := p.parseRoot()
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResult{Root: root, Context: extractContext(root)}, nil
}

// parser is a recursive descent parser with one-token lookahead, plus a
// bounded forward scan for the matching ')' where the grammar is
// ambiguous between a group header and a parenthesized attribute.
//
// CONVENTION: parse functions expect the cursor on the first token of
// what they consume and leave it on the first token of whatever comes
// next; terminators are consumed by the function that owns them.
type parser struct {
	tokens []Token
	index  int
	file   FileRef
}

func (p *parser) parseRoot() (*Root, error) {
	root := &Root{}
	for !p.atEnd() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)
	}
	return root, nil
}

func (p *parser) parseNode() (Node, error) {
	t := p.peek()
	switch t.Type {
	case CommentToken:
		p.advance()
		return &Comment{Text: t.Value}, nil
	case IdentifierToken:
		next := p.peekAt(1)
		if next != nil && next.Type == ColonToken {
			return p.parseColonAttribute()
		}
		if next != nil && next.Type == GroupOpenToken {
			return p.parseGroupOrParenAttribute()
		}
		return nil, p.errorAt(*t, "expected ':' or '(' after identifier")
	}
	return nil, p.errorAt(*t, fmt.Sprintf("unexpected token %s", t.Type))
}

// parseGroupOrParenAttribute disambiguates name(args){...} from
// name(args); by locating the matching ')' and inspecting what follows.
// The scan is bounded by the argument region; it never descends into
// brace bodies.
func (p *parser) parseGroupOrParenAttribute() (Node, error) {
	open := p.index + 1
	closing := p.matchingParen(open)
	if closing < 0 {
		return nil, p.errorAt(p.tokens[open], "unclosed '('")
	}
	if after := p.tokenAt(closing + 1); after != nil && after.Type == BlockOpenToken {
		return p.parseGroup(closing)
	}
	return p.parseParenAttribute(closing)
}

func (p *parser) parseGroup(closing int) (Node, error) {
	name := p.mustAdvance() // identifier, checked by caller
	p.advance()             // '('
	group := &Group{Name: name.Value, Args: p.collectTo(closing)}
	p.advance() // ')'
	p.advance() // '{'
	for {
		if p.atEnd() {
			return nil, p.errorAt(name, fmt.Sprintf("group %q is never closed", group.Name))
		}
		if p.peek().Type == BlockCloseToken {
			p.advance()
			return group, nil
		}
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		group.Children = append(group.Children, child)
	}
}

func (p *parser) parseParenAttribute(closing int) (Node, error) {
	key := p.mustAdvance() // identifier
	p.advance()            // '('
	attr := &Attribute{Key: key.Value, Raw: p.collectTo(closing), UseParens: true}
	attr.QuoteStyle = inferQuoteStyle(attr.Raw)
	closeParen := p.mustAdvance() // ')'

	// Terminator: ';', or '}' (left for the group), or a line break, or
	// end of input.
	t := p.peek()
	switch {
	case t == nil:
		return attr, nil
	case t.Type == SemiToken:
		p.advance()
		return attr, nil
	case t.Type == BlockCloseToken:
		return attr, nil
	case t.Line > closeParen.Line:
		return attr, nil
	}
	return nil, p.errorAt(*t, fmt.Sprintf("expected ';' after attribute %q", key.Value))
}

func (p *parser) parseColonAttribute() (Node, error) {
	key := p.mustAdvance()  // identifier
	last := p.mustAdvance() // ':'
	attr := &Attribute{Key: key.Value}
	for {
		t := p.peek()
		if t == nil {
			// End of input terminates a non-empty RHS; an attribute cut
			// off right after the colon is malformed.
			if len(attr.Raw) == 0 {
				return nil, p.errorAt(last, fmt.Sprintf("unexpected end of input in attribute %q", key.Value))
			}
			break
		}
		// A logical line ends at a real newline unless the last token
		// was a line continuation.
		if t.Line > last.Line && last.Type != EscapedNewlineToken {
			break
		}
		if t.Type == SemiToken {
			p.advance()
			break
		}
		if t.Type == BlockOpenToken || t.Type == BlockCloseToken {
			return nil, p.errorAt(*t, fmt.Sprintf("expected ';' after attribute %q", key.Value))
		}
		attr.Raw = append(attr.Raw, *t)
		last = *t
		p.advance()
	}
	attr.QuoteStyle = inferQuoteStyle(attr.Raw)
	return attr, nil
}

// inferQuoteStyle reports QuoteDouble when the first significant RHS
// token is a string literal; this drives the formatter.
func inferQuoteStyle(raw []Token) QuoteStyle {
	for _, t := range raw {
		switch t.Type {
		case CommentToken, EscapedNewlineToken:
			continue
		case StringToken:
			return QuoteDouble
		default:
			return QuoteNone
		}
	}
	return QuoteNone
}

// matchingParen returns the index of the ')' matching the '(' at open,
// or -1 when the region is unterminated or runs into a brace.
func (p *parser) matchingParen(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case GroupOpenToken:
			depth++
		case GroupCloseToken:
			depth--
			if depth == 0 {
				return i
			}
		case BlockOpenToken, BlockCloseToken:
			return -1
		}
	}
	return -1
}

// collectTo returns the raw tokens from the cursor up to (exclusive) the
// given index and moves the cursor there.
func (p *parser) collectTo(end int) []Token {
	var collected []Token
	for p.index < end {
		collected = append(collected, p.tokens[p.index])
		p.index++
	}
	return collected
}

func (p *parser) peek() *Token {
	return p.tokenAt(p.index)
}

func (p *parser) peekAt(offset int) *Token {
	return p.tokenAt(p.index + offset)
}

func (p *parser) tokenAt(index int) *Token {
	if index < 0 || index >= len(p.tokens) {
		return nil
	}
	return &p.tokens[index]
}

func (p *parser) advance() {
	p.index++
}

func (p *parser) mustAdvance() Token {
	t := p.tokens[p.index]
	p.index++
	return t
}

func (p *parser) atEnd() bool {
	return p.index >= len(p.tokens)
}

func (p *parser) errorAt(t Token, message string) error {
	return ParserError{Pos: Pos{File: p.file, Line: t.Line, Col: t.Column}, Message: message}
}

// extractContext scans the first top-level library(...) group's direct
// attributes for the unit declarations that gate patching.
func extractContext(root *Root) LibraryContext {
	var context LibraryContext
	var library *Group
	for _, child := range root.Children {
		if g, ok := child.(*Group); ok && g.Name == "library" {
			library = g
			break
		}
	}
	if library == nil {
		return context
	}
	for _, child := range library.Children {
		attr, ok := child.(*Attribute)
		if !ok {
			continue
		}
		switch attr.Key {
		case "time_unit":
			context.TimeUnit = FlattenTokens(attr.Raw)
		case "voltage_unit":
			context.VoltageUnit = FlattenTokens(attr.Raw)
		case "leakage_power_unit":
			context.LeakagePowerUnit = FlattenTokens(attr.Raw)
		}
	}
	return context
}
