package liberty

// TokenType enumerates the lexical categories of the Liberty dialect.
type TokenType int

const (
	GroupOpenToken TokenType = iota + 1 // '('
	GroupCloseToken                     // ')'
	BlockOpenToken                      // '{'
	BlockCloseToken                     // '}'
	ColonToken
	SemiToken
	CommaToken

	// StringToken's value is the decoded string body, without the
	// surrounding quotes. Escaped line continuations inside the body are
	// kept verbatim.
	StringToken

	// IdentifierToken covers any run of characters that is neither
	// whitespace nor punctuation: names, numbers, units like 1ns, dotted
	// names, and unquoted comma-free numeric list fragments.
	IdentifierToken

	CommentToken

	// EscapedNewlineToken is a backslash immediately followed by a
	// newline. It is a first-class token because it joins logical lines;
	// the parser and the matrix codec both key off it.
	EscapedNewlineToken
)

func (tt TokenType) String() string {
	return tokenToDescription[tt]
}

func (tt TokenType) GoString() string {
	return tokenToDescription[tt]
}

func init() {
	// make sure we panic if a description isn't declared
	for tt := GroupOpenToken; tt <= EscapedNewlineToken; tt++ {
		if tokenToDescription[tt] == "" {
			panic("you have not updated tokenToDescription")
		}
	}
}

var tokenToDescription = map[TokenType]string{
	GroupOpenToken:  "GroupOpenToken",
	GroupCloseToken: "GroupCloseToken",
	BlockOpenToken:  "BlockOpenToken",
	BlockCloseToken: "BlockCloseToken",
	ColonToken:      "ColonToken",
	SemiToken:       "SemiToken",
	CommaToken:      "CommaToken",

	StringToken:     "StringToken",
	IdentifierToken: "IdentifierToken",

	CommentToken:        "CommentToken",
	EscapedNewlineToken: "EscapedNewlineToken",
}
