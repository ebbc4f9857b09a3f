package parser

// TokenKind classifies a lexical token. Tokens never own substrings; they
// are referenced by [Start, End) byte offsets into the source buffer, per
// spec.md 4.2's index-overlay requirement.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenKeyword
	TokenIntLiteral
	TokenFloatLiteral
	TokenStringLiteral
	TokenCharLiteral
	TokenBoolLiteral
	TokenNullLiteral
	TokenOperator
	TokenPunct
	TokenLineComment
	TokenBlockComment
	TokenDocComment
	TokenInvalid
)

// Token is a lexical unit referencing a span of the source buffer.
type Token struct {
	Kind  TokenKind
	Start uint32
	End   uint32
	Line  int
	Col   int
}

// keywords is the set of reserved words recognized as TokenKeyword rather
// than TokenIdentifier.
var keywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "class": true,
	"const": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extends": true,
	"final": true, "finally": true, "float": true, "for": true, "goto": true,
	"if": true, "implements": true, "import": true, "instanceof": true,
	"int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true,
	"public": true, "record": true, "return": true, "short": true,
	"static": true, "strictfp": true, "super": true, "switch": true,
	"synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true,
	"while": true, "var": true, "yield": true, "sealed": true,
	"permits": true, "non-sealed": true,
}

var booleanLiterals = map[string]bool{"true": true, "false": true}

// isKeyword reports whether ident is a reserved Java keyword.
func isKeyword(ident string) bool {
	return keywords[ident]
}
