// Package parser implements the index-overlay recursive-descent parser
// described in spec.md 4.2: it converts Java source text into an
// internal/arena Arena plus a root NodeIndex, using single-token lookahead
// and offset-based node construction (nodes reference source spans, never
// copy substrings).
package parser

import (
	"fmt"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// Result is the outcome of a parse: the arena built so far, its root node,
// recorded comments, and any accumulated syntax errors (the first is
// primary, per spec.md 4.2).
type Result struct {
	Arena    *arena.Arena
	Root     arena.NodeIndex
	Comments []arena.Comment
	Errors   []*SyntaxError
}

// FirstError returns the primary (first-encountered) syntax error, or nil
// if parsing completed cleanly.
func (r *Result) FirstError() *SyntaxError {
	if len(r.Errors) == 0 {
		return nil
	}

	return r.Errors[0]
}

// pendingComment tracks a comment awaiting attachment-rule resolution.
type pendingComment struct {
	tok  Token
	kind arena.CommentKind
}

type parser struct {
	src  []byte
	lx   *lexer
	tree *arena.Arena

	cur  Token
	peek Token

	depth    int
	errs     []*SyntaxError
	pending  []pendingComment
	lastNode arena.NodeIndex
	lastEnd  int // line of the end of the last fully parsed node

	secErr error // set once an identifier exceeds MaxIdentifierLength; aborts the parse
}

// checkSecurity returns the first recorded security violation, if any.
// Called at the top of the major recursive productions so an oversized
// identifier aborts the parse instead of recovering like a syntax error.
func (p *parser) checkSecurity() error {
	return p.secErr
}

// Parse converts source into an arena-backed AST. targetVersion is
// accepted for interface completeness (spec.md 4.2's contract) but does
// not currently gate any grammar production — all supported Java syntax
// is accepted regardless of declared version.
func Parse(source []byte, targetVersion string) (*Result, error) {
	_ = targetVersion

	if len(source) > MaxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(source))
	}

	p := &parser{
		src:      source,
		lx:       newLexer(source),
		tree:     arena.New(len(source)),
		lastNode: arena.NoIndex,
	}

	p.advance()
	p.advance()

	root, err := p.parseCompilationUnit()
	if err != nil {
		return nil, err
	}

	// An oversized identifier seen after the last checkSecurity call still
	// aborts the parse.
	if p.secErr != nil {
		return nil, p.secErr
	}

	p.flushTrailingAtEOF(root)

	return &Result{Arena: p.tree, Root: root, Comments: p.tree.Comments(), Errors: p.errs}, nil
}

// flushTrailingAtEOF attaches any comments still pending once the whole
// file has been consumed — e.g. a trailing comment after the last
// statement in a file, encountered before any node had yet completed.
// Without this, such comments would never be reachable from any node.
func (p *parser) flushTrailingAtEOF(root arena.NodeIndex) {
	target := root
	if p.lastNode.Valid() {
		target = p.lastNode
	}

	for _, pc := range p.pending {
		p.tree.AddComment(arena.Comment{
			Kind:            pc.kind,
			ContentOffset:   pc.tok.Start,
			ContentLength:   pc.tok.End - pc.tok.Start,
			AttachTo:        target,
			LeadingTrailing: arena.AttachTrailing,
		})
	}

	p.pending = p.pending[:0]
}

// advance shifts the lookahead window forward by one significant token,
// recording (and, where resolvable, attaching) any comments encountered
// along the way.
func (p *parser) advance() {
	p.cur = p.peek

	if p.secErr == nil && (p.cur.Kind == TokenIdentifier || p.cur.Kind == TokenKeyword) &&
		int(p.cur.End-p.cur.Start) > MaxIdentifierLength {
		p.secErr = &SecurityError{Cause: ErrIdentifierTooLong, Pos: p.position(p.cur)}
	}

	for {
		tok := p.lx.next()

		switch tok.Kind {
		case TokenLineComment, TokenBlockComment, TokenDocComment:
			p.recordComment(tok)

			continue
		default:
			p.peek = tok

			return
		}
	}
}

func (p *parser) recordComment(tok Token) {
	kind := arena.CommentBlock

	switch tok.Kind {
	case TokenLineComment:
		kind = arena.CommentLine
	case TokenDocComment:
		kind = arena.CommentDoc
	}

	// Trailing rule: same line as the last fully parsed node's end, no
	// intervening tokens (guaranteed since we only ever skip whitespace
	// and other comments between significant tokens).
	if p.lastNode.Valid() && tok.Line == p.lastEnd {
		p.tree.AddComment(arena.Comment{
			Kind:            kind,
			ContentOffset:   tok.Start,
			ContentLength:   tok.End - tok.Start,
			AttachTo:        p.lastNode,
			LeadingTrailing: arena.AttachTrailing,
		})

		return
	}

	p.pending = append(p.pending, pendingComment{tok: tok, kind: kind})
}

// flushLeadingComments attaches all pending comments to target as leading
// comments. Called immediately after a declaration node is allocated.
func (p *parser) flushLeadingComments(target arena.NodeIndex) {
	for _, pc := range p.pending {
		p.tree.AddComment(arena.Comment{
			Kind:            pc.kind,
			ContentOffset:   pc.tok.Start,
			ContentLength:   pc.tok.End - pc.tok.Start,
			AttachTo:        target,
			LeadingTrailing: arena.AttachLeading,
		})
	}

	p.pending = p.pending[:0]
}

// markComplete records that target is the most recently completed node,
// for same-line trailing-comment attachment.
func (p *parser) markComplete(target arena.NodeIndex, endLine int) {
	p.lastNode = target
	p.lastEnd = endLine
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxNestingDepth {
		pos := p.position(p.cur)

		return &SecurityError{Cause: ErrNestingTooDeep, Pos: pos}
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) position(tok Token) arena.Position {
	return arena.Position{Line: tok.Line, Column: tok.Col}
}

func (p *parser) text(tok Token) string {
	return string(p.src[tok.Start:tok.End])
}

func (p *parser) isKeyword(text string) bool {
	return p.cur.Kind == TokenKeyword && p.text(p.cur) == text
}

func (p *parser) isOp(text string) bool {
	return (p.cur.Kind == TokenOperator || p.cur.Kind == TokenPunct) && p.text(p.cur) == text
}

func (p *parser) recordError(expected string) {
	p.errs = append(p.errs, &SyntaxError{
		Pos:      p.position(p.cur),
		Expected: expected,
		Actual:   p.describeCurrent(),
	})
}

func (p *parser) describeCurrent() string {
	if p.cur.Kind == TokenEOF {
		return "end of file"
	}

	return fmt.Sprintf("%q", p.text(p.cur))
}

// expect consumes the current token if it matches text, else records a
// syntax error and does not advance (the caller is responsible for
// invoking recovery).
func (p *parser) expect(text string) bool {
	if p.isOp(text) || p.isKeyword(text) {
		p.advance()

		return true
	}

	p.recordError(text)

	return false
}

// recoverToTopLevel implements panic-mode recovery (spec.md 4.2): skip
// tokens until a top-level declaration keyword at brace depth 0, or EOF.
func (p *parser) recoverToTopLevel() {
	braceDepth := 0

	for p.cur.Kind != TokenEOF {
		if p.isOp("{") {
			braceDepth++
		}

		if p.isOp("}") {
			if braceDepth == 0 {
				p.advance()

				return
			}

			braceDepth--
		}

		if braceDepth == 0 && p.isTypeDeclKeyword() {
			return
		}

		p.advance()
	}
}

func (p *parser) isTypeDeclKeyword() bool {
	for _, kw := range []string{"class", "interface", "enum", "record"} {
		if p.isKeyword(kw) {
			return true
		}
	}

	return false
}
