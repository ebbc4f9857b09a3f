package parser

import (
	"errors"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// parseBlock parses a brace-delimited statement list.
func (p *parser) parseBlock() (arena.NodeIndex, error) {
	if err := p.enter(); err != nil {
		return arena.NoIndex, err
	}
	defer p.leave()

	start := p.startOffset()

	if !p.expect("{") {
		return arena.NoIndex, nil
	}

	node, listIdx, err := p.newDeclNode(arena.TypeBlock, start)
	if err != nil {
		return arena.NoIndex, err
	}

	for !p.isOp("}") && p.cur.Kind != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			var secErr *SecurityError
			if errors.As(err, &secErr) {
				return arena.NoIndex, err
			}

			p.recoverToMemberBoundary()

			continue
		}

		if stmt.Valid() {
			_ = p.tree.AppendChild(listIdx, stmt)
		}
	}

	end := p.cur.End
	p.expect("}")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

// parseStatement dispatches on the leading keyword/token of a statement.
func (p *parser) parseStatement() (arena.NodeIndex, error) {
	if err := p.checkSecurity(); err != nil {
		return arena.NoIndex, err
	}

	if err := p.enter(); err != nil {
		return arena.NoIndex, err
	}
	defer p.leave()

	switch {
	case p.isOp("{"):
		return p.parseBlock()
	case p.isKeyword("if"):
		return p.parseIfStatement()
	case p.isKeyword("for"):
		return p.parseForStatement()
	case p.isKeyword("while"):
		return p.parseWhileStatement()
	case p.isKeyword("do"):
		return p.parseDoStatement()
	case p.isKeyword("switch"):
		return p.parseSwitchStatement()
	case p.isKeyword("try"):
		return p.parseTryStatement()
	case p.isKeyword("return"):
		return p.parseReturnStatement()
	case p.isKeyword("throw"):
		return p.parseThrowStatement()
	case p.isKeyword("break"):
		return p.parseBreakContinue(arena.TypeBreakStatement)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(arena.TypeContinueStatement)
	case p.isKeyword("assert"):
		return p.parseAssertStatement()
	case p.isOp(";"):
		start := p.startOffset()
		p.advance()

		return p.tree.Allocate(arena.TypeExprStatement, start, p.cur.Start, 0)
	default:
		if p.looksLikeLocalVarDecl() {
			return p.parseLocalVarDecl()
		}

		return p.parseExprStatement()
	}
}

func (p *parser) parseIfStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeIfStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'if'
	p.expect("(")

	cond, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if cond.Valid() {
		_ = p.tree.AppendChild(listIdx, cond)
	}

	p.expect(")")

	then, err := p.parseStatement()
	if err != nil {
		return arena.NoIndex, err
	}

	if then.Valid() {
		_ = p.tree.AppendChild(listIdx, then)
	}

	if p.isKeyword("else") {
		p.advance()

		elseStmt, err := p.parseStatement()
		if err != nil {
			return arena.NoIndex, err
		}

		if elseStmt.Valid() {
			_ = p.tree.AppendChild(listIdx, elseStmt)
		}
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseForStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeForStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'for'
	p.expect("(")

	// Enhanced for: (Type ident : expr) — detect by scanning for a bare
	// ':' before the matching ')' at depth 0.
	if p.looksLikeEnhancedFor() {
		if p.looksLikeLocalVarDecl() || p.cur.Kind == TokenIdentifier || p.cur.Kind == TokenKeyword {
			for p.isModifierKeyword() {
				p.advance()
			}

			p.skipType()

			if p.cur.Kind == TokenIdentifier {
				nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
				if err != nil {
					return arena.NoIndex, err
				}

				_ = p.tree.AppendChild(listIdx, nameIdx)
				p.advance()
			}
		}

		p.expect(":")

		iterable, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if iterable.Valid() {
			_ = p.tree.AppendChild(listIdx, iterable)
		}

		p.expect(")")

		body, err := p.parseStatement()
		if err != nil {
			return arena.NoIndex, err
		}

		if body.Valid() {
			_ = p.tree.AppendChild(listIdx, body)
		}

		if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
			return arena.NoIndex, err
		}

		return node, nil
	}

	// Classic for: init; cond; update.
	if !p.isOp(";") {
		var init arena.NodeIndex

		var err error

		if p.looksLikeLocalVarDecl() {
			init, err = p.parseLocalVarDeclNoSemi()
		} else {
			init, err = p.parseExpression()
		}

		if err != nil {
			return arena.NoIndex, err
		}

		if init.Valid() {
			_ = p.tree.AppendChild(listIdx, init)
		}
	}

	p.expect(";")

	if !p.isOp(";") {
		cond, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if cond.Valid() {
			_ = p.tree.AppendChild(listIdx, cond)
		}
	}

	p.expect(";")

	for !p.isOp(")") && p.cur.Kind != TokenEOF {
		upd, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if upd.Valid() {
			_ = p.tree.AppendChild(listIdx, upd)
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	p.expect(")")

	body, err := p.parseStatement()
	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

// looksLikeEnhancedFor scans ahead (without consuming) for a top-level ':'
// before the closing ')' of a for-header.
func (p *parser) looksLikeEnhancedFor() bool {
	save := *p.lx
	savedCur, savedPeek := p.cur, p.peek

	depth := 0
	found := false

	for i := 0; i < 4096; i++ {
		if p.isOp("(") {
			depth++
		}

		if p.isOp(")") {
			if depth == 0 {
				break
			}

			depth--
		}

		if depth == 0 && p.isOp(":") {
			found = true

			break
		}

		if depth == 0 && p.isOp(";") {
			break
		}

		if p.cur.Kind == TokenEOF {
			break
		}

		p.advance()
	}

	*p.lx = save
	p.cur, p.peek = savedCur, savedPeek

	return found
}

func (p *parser) parseWhileStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeWhileStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'while'
	p.expect("(")

	cond, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if cond.Valid() {
		_ = p.tree.AppendChild(listIdx, cond)
	}

	p.expect(")")

	body, err := p.parseStatement()
	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseDoStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeDoStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'do'

	body, err := p.parseStatement()
	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	p.expect("while")
	p.expect("(")

	cond, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if cond.Valid() {
		_ = p.tree.AppendChild(listIdx, cond)
	}

	p.expect(")")

	end := p.cur.End
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseSwitchStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeSwitchStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'switch'
	p.expect("(")

	selector, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if selector.Valid() {
		_ = p.tree.AppendChild(listIdx, selector)
	}

	p.expect(")")
	p.expect("{")

	for !p.isOp("}") && p.cur.Kind != TokenEOF {
		if p.isKeyword("case") {
			p.advance()

			for {
				lbl, err := p.parseExpression()
				if err != nil {
					return arena.NoIndex, err
				}

				if lbl.Valid() {
					_ = p.tree.AppendChild(listIdx, lbl)
				}

				if p.isOp(",") {
					p.advance()

					continue
				}

				break
			}
		} else if p.isKeyword("default") {
			p.advance()
		} else {
			p.recordError("case or default")
			p.recoverToMemberBoundary()

			continue
		}

		if p.isOp("->") {
			p.advance()

			if p.isOp("{") {
				blk, err := p.parseBlock()
				if err != nil {
					return arena.NoIndex, err
				}

				if blk.Valid() {
					_ = p.tree.AppendChild(listIdx, blk)
				}
			} else {
				stmt, err := p.parseStatement()
				if err != nil {
					return arena.NoIndex, err
				}

				if stmt.Valid() {
					_ = p.tree.AppendChild(listIdx, stmt)
				}
			}

			continue
		}

		p.expect(":")

		for !p.isKeyword("case") && !p.isKeyword("default") && !p.isOp("}") && p.cur.Kind != TokenEOF {
			stmt, err := p.parseStatement()
			if err != nil {
				var secErr *SecurityError
				if errors.As(err, &secErr) {
					return arena.NoIndex, err
				}

				p.recoverToMemberBoundary()

				continue
			}

			if stmt.Valid() {
				_ = p.tree.AppendChild(listIdx, stmt)
			}
		}
	}

	end := p.cur.End
	p.expect("}")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseTryStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeTryStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'try'

	if p.isOp("(") {
		p.advance()

		for !p.isOp(")") && p.cur.Kind != TokenEOF {
			res, err := p.parseLocalVarDeclNoSemi()
			if err != nil {
				return arena.NoIndex, err
			}

			if res.Valid() {
				_ = p.tree.AppendChild(listIdx, res)
			}

			if p.isOp(";") {
				p.advance()

				continue
			}

			break
		}

		p.expect(")")
	}

	body, err := p.parseBlock()
	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	for p.isKeyword("catch") {
		p.advance()
		p.expect("(")

		for p.isModifierKeyword() {
			p.advance()
		}

		p.skipType()

		for p.isOp("|") {
			p.advance()
			p.skipType()
		}

		if p.cur.Kind == TokenIdentifier {
			p.advance()
		}

		p.expect(")")

		catchBody, err := p.parseBlock()
		if err != nil {
			return arena.NoIndex, err
		}

		if catchBody.Valid() {
			_ = p.tree.AppendChild(listIdx, catchBody)
		}
	}

	if p.isKeyword("finally") {
		p.advance()

		finallyBody, err := p.parseBlock()
		if err != nil {
			return arena.NoIndex, err
		}

		if finallyBody.Valid() {
			_ = p.tree.AppendChild(listIdx, finallyBody)
		}
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseReturnStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeReturnStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'return'

	if !p.isOp(";") {
		val, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if val.Valid() {
			_ = p.tree.AppendChild(listIdx, val)
		}
	}

	end := p.cur.End
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseThrowStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeThrowStatement, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'throw'

	val, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if val.Valid() {
		_ = p.tree.AppendChild(listIdx, val)
	}

	end := p.cur.End
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseBreakContinue(tag arena.TypeTag) (arena.NodeIndex, error) {
	start := p.startOffset()
	p.advance() // keyword

	if p.cur.Kind == TokenIdentifier {
		p.advance() // label
	}

	end := p.cur.End
	p.expect(";")

	idx, err := p.tree.Allocate(tag, start, end, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	p.markComplete(idx, p.cur.Line)

	return idx, nil
}

func (p *parser) parseAssertStatement() (arena.NodeIndex, error) {
	start := p.startOffset()
	p.advance() // 'assert'

	if _, err := p.parseExpression(); err != nil {
		return arena.NoIndex, err
	}

	if p.isOp(":") {
		p.advance()

		if _, err := p.parseExpression(); err != nil {
			return arena.NoIndex, err
		}
	}

	end := p.cur.End
	p.expect(";")

	idx, err := p.tree.Allocate(arena.TypeExprStatement, start, end, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	p.markComplete(idx, p.cur.Line)

	return idx, nil
}

func (p *parser) parseExprStatement() (arena.NodeIndex, error) {
	start := p.startOffset()

	expr, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	end := p.cur.End
	p.expect(";")

	idx, err := p.tree.Allocate(arena.TypeExprStatement, start, end, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	if expr.Valid() {
		listIdx := p.tree.NewChildList()
		_ = p.tree.AppendChild(listIdx, expr)

		if err := p.tree.SetData(idx, listIdx); err != nil {
			return arena.NoIndex, err
		}
	}

	p.markComplete(idx, p.cur.Line)

	return idx, nil
}

// looksLikeLocalVarDecl scans ahead for the "Type identifier" shape (or a
// leading 'final' or annotation) that distinguishes a local variable declaration from an
// expression statement, without committing to consuming tokens.
func (p *parser) looksLikeLocalVarDecl() bool {
	if p.isKeyword("final") {
		return true
	}

	if p.isOp("@") {
		return true
	}

	if p.cur.Kind != TokenIdentifier && p.cur.Kind != TokenKeyword {
		return false
	}

	if !isPrimitiveOrVar(p.text(p.cur)) && p.cur.Kind == TokenKeyword {
		return false
	}

	save := *p.lx
	savedCur, savedPeek := p.cur, p.peek

	p.skipType()

	ok := p.cur.Kind == TokenIdentifier

	*p.lx = save
	p.cur, p.peek = savedCur, savedPeek

	return ok
}

func isPrimitiveOrVar(text string) bool {
	switch text {
	case "int", "long", "short", "byte", "char", "boolean", "float", "double", "void", "var":
		return true
	default:
		return false
	}
}

func (p *parser) parseLocalVarDecl() (arena.NodeIndex, error) {
	node, err := p.parseLocalVarDeclNoSemi()
	if err != nil {
		return arena.NoIndex, err
	}

	end := p.cur.End
	p.expect(";")

	if node.Valid() {
		_ = p.tree.SetEnd(node, end)
		p.markComplete(node, p.cur.Line)
	}

	return node, nil
}

func (p *parser) parseLocalVarDeclNoSemi() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeLocalVarDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if err := p.parseAnnotations(listIdx); err != nil {
		return arena.NoIndex, err
	}

	if p.isKeyword("final") {
		p.advance()
	}

	p.skipType()

	for {
		if p.cur.Kind != TokenIdentifier {
			p.recordError("identifier")

			break
		}

		nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, nameIdx)
		p.advance()

		for p.isOp("[") {
			p.advance()
			p.expect("]")
		}

		if p.isOp("=") {
			p.advance()

			val, err := p.parseVariableInitializer()
			if err != nil {
				return arena.NoIndex, err
			}

			if val.Valid() {
				_ = p.tree.AppendChild(listIdx, val)
			}
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}
