package liberty

import "fmt"

// LexerError is fatal to the current parse: an unterminated string or
// comment, or a character the dialect has no rule for.
type LexerError struct {
	Pos     Pos
	Message string
}

func (e LexerError) Error() string {
	return fmt.Sprintf("%s:%d:%d %s", e.Pos.File, e.Pos.Line, e.Pos.Col, e.Message)
}

// ParserError covers unexpected tokens, missing terminators and unclosed
// groups. Pos points at the offending token; an error at end of input
// points at the token that opened the unfinished construct (the group
// name, the '(' or the ':').
type ParserError struct {
	Pos     Pos
	Message string
}

func (e ParserError) Error() string {
	return fmt.Sprintf("%s:%d:%d %s", e.Pos.File, e.Pos.Line, e.Pos.Col, e.Message)
}

// FormatterError reports a matrix whose flat value count does not agree
// with the shape resolved from the sibling index_1/index_2 attributes.
type FormatterError struct {
	Key     string
	Message string
}

func (e FormatterError) Error() string {
	return fmt.Sprintf("attribute %q: %s", e.Key, e.Message)
}
