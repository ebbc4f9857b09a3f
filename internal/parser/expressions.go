package parser

import "github.com/Sumatoshi-tech/javafmt/internal/arena"

// binaryPrecedence maps an operator spelling to its binding power; higher
// binds tighter. Operators absent from this table are not binary operators.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "instanceof": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

var assignmentOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

// parseExpression parses a full expression: assignment, or (if no
// assignment operator follows) a lambda, or a binary/conditional expression.
func (p *parser) parseExpression() (arena.NodeIndex, error) {
	if err := p.enter(); err != nil {
		return arena.NoIndex, err
	}
	defer p.leave()

	if p.looksLikeLambda() {
		return p.parseLambda()
	}

	left, err := p.parseConditional()
	if err != nil {
		return arena.NoIndex, err
	}

	if p.cur.Kind == TokenOperator && assignmentOps[p.text(p.cur)] {
		start := p.tree.Start(left)

		listIdx := p.tree.NewChildList()
		_ = p.tree.AppendChild(listIdx, left)

		p.advance() // operator

		right, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if right.Valid() {
			_ = p.tree.AppendChild(listIdx, right)
		}

		idx, err := p.tree.Allocate(arena.TypeAssignmentExpr, start, p.cur.Start, listIdx)
		if err != nil {
			return arena.NoIndex, err
		}

		return idx, nil
	}

	return left, nil
}

// parseConditional handles the ternary a ? b : c, binding looser than all
// binary operators.
func (p *parser) parseConditional() (arena.NodeIndex, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return arena.NoIndex, err
	}

	if !p.isOp("?") {
		return cond, nil
	}

	start := p.tree.Start(cond)
	listIdx := p.tree.NewChildList()
	_ = p.tree.AppendChild(listIdx, cond)

	p.advance() // '?'

	thenExpr, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if thenExpr.Valid() {
		_ = p.tree.AppendChild(listIdx, thenExpr)
	}

	p.expect(":")

	elseExpr, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	if elseExpr.Valid() {
		_ = p.tree.AppendChild(listIdx, elseExpr)
	}

	return p.tree.Allocate(arena.TypeBinaryExpr, start, p.cur.Start, listIdx)
}

// parseBinary implements precedence climbing over binaryPrecedence,
// starting from minPrec.
func (p *parser) parseBinary(minPrec int) (arena.NodeIndex, error) {
	left, err := p.parseUnary()
	if err != nil {
		return arena.NoIndex, err
	}

	for {
		opText, prec, ok := p.currentBinaryOp()
		if !ok || prec < minPrec {
			return left, nil
		}

		start := p.tree.Start(left)
		p.advance() // operator

		var right arena.NodeIndex

		if opText == "instanceof" {
			p.skipType()

			if p.cur.Kind == TokenIdentifier {
				p.advance() // pattern binding variable
			}
		} else {
			right, err = p.parseBinary(prec + 1)
			if err != nil {
				return arena.NoIndex, err
			}
		}

		listIdx := p.tree.NewChildList()
		_ = p.tree.AppendChild(listIdx, left)

		if right.Valid() {
			_ = p.tree.AppendChild(listIdx, right)
		}

		idx, err := p.tree.Allocate(arena.TypeBinaryExpr, start, p.cur.Start, listIdx)
		if err != nil {
			return arena.NoIndex, err
		}

		left = idx
	}
}

func (p *parser) currentBinaryOp() (string, int, bool) {
	if p.cur.Kind == TokenKeyword && p.text(p.cur) == "instanceof" {
		return "instanceof", binaryPrecedence["instanceof"], true
	}

	if p.cur.Kind != TokenOperator {
		return "", 0, false
	}

	text := p.text(p.cur)

	prec, ok := binaryPrecedence[text]

	return text, prec, ok
}

var unaryOps = map[string]bool{
	"+": true, "-": true, "!": true, "~": true, "++": true, "--": true,
}

func (p *parser) parseUnary() (arena.NodeIndex, error) {
	if p.cur.Kind == TokenOperator && unaryOps[p.text(p.cur)] {
		start := p.startOffset()
		p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return arena.NoIndex, err
		}

		listIdx := p.tree.NewChildList()

		if operand.Valid() {
			_ = p.tree.AppendChild(listIdx, operand)
		}

		return p.tree.Allocate(arena.TypeUnaryExpr, start, p.cur.Start, listIdx)
	}

	if p.isOp("(") && p.looksLikeCast() {
		return p.parseCast()
	}

	return p.parsePostfix()
}

// looksLikeCast applies the classic "(Type) unary" heuristic: inside the
// parens is a type reference, and the token after the closing paren can
// begin a unary expression.
func (p *parser) looksLikeCast() bool {
	save := *p.lx
	savedCur, savedPeek := p.cur, p.peek

	ok := p.tryConsumeCastHeader()

	*p.lx = save
	p.cur, p.peek = savedCur, savedPeek

	return ok
}

func (p *parser) tryConsumeCastHeader() bool {
	p.advance() // '('

	if isPrimitiveOrVar(p.text(p.cur)) && p.cur.Kind == TokenKeyword {
		p.skipType()

		return p.isOp(")")
	}

	if p.cur.Kind != TokenIdentifier {
		return false
	}

	p.skipType()

	if !p.isOp(")") {
		return false
	}

	p.advance() // ')'

	switch {
	case p.cur.Kind == TokenIdentifier, p.cur.Kind == TokenIntLiteral,
		p.cur.Kind == TokenFloatLiteral, p.cur.Kind == TokenStringLiteral,
		p.cur.Kind == TokenCharLiteral, p.cur.Kind == TokenBoolLiteral,
		p.cur.Kind == TokenNullLiteral:
		return true
	case p.isKeyword("this") || p.isKeyword("super") || p.isKeyword("new"):
		return true
	case p.isOp("(") || p.isOp("!") || p.isOp("~"):
		return true
	default:
		return false
	}
}

func (p *parser) parseCast() (arena.NodeIndex, error) {
	start := p.startOffset()
	p.advance() // '('
	p.skipType()
	p.expect(")")

	operand, err := p.parseUnary()
	if err != nil {
		return arena.NoIndex, err
	}

	listIdx := p.tree.NewChildList()

	if operand.Valid() {
		_ = p.tree.AppendChild(listIdx, operand)
	}

	return p.tree.Allocate(arena.TypeCastExpr, start, p.cur.Start, listIdx)
}

// parsePostfix parses a primary expression followed by any chain of
// '.', '[...]', '(...)', and postfix ++/--.
func (p *parser) parsePostfix() (arena.NodeIndex, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return arena.NoIndex, err
	}

	for {
		switch {
		case p.isOp("."):
			expr, err = p.parseFieldOrMethod(expr)
		case p.isOp("["):
			expr, err = p.parseArrayAccess(expr)
		case p.isOp("("):
			expr, err = p.parseCallArgs(expr)
		case p.isOp("++") || p.isOp("--"):
			start := p.tree.Start(expr)
			p.advance()

			listIdx := p.tree.NewChildList()
			_ = p.tree.AppendChild(listIdx, expr)
			expr, err = p.tree.Allocate(arena.TypeUnaryExpr, start, p.cur.Start, listIdx)
		default:
			return expr, nil
		}

		if err != nil {
			return arena.NoIndex, err
		}
	}
}

func (p *parser) parseFieldOrMethod(receiver arena.NodeIndex) (arena.NodeIndex, error) {
	start := p.tree.Start(receiver)
	p.advance() // '.'

	if p.isOp("<") {
		p.skipBalancedAngle() // explicit type-witness, e.g. a.<T>foo()
	}

	if p.isKeyword("new") {
		return p.parseNewExpr(receiver)
	}

	if p.isKeyword("this") || p.isKeyword("class") || p.isKeyword("super") {
		p.advance()

		listIdx := p.tree.NewChildList()
		_ = p.tree.AppendChild(listIdx, receiver)

		return p.tree.Allocate(arena.TypeFieldAccessExpr, start, p.cur.Start, listIdx)
	}

	if p.cur.Kind != TokenIdentifier {
		p.recordError("member name")

		listIdx := p.tree.NewChildList()
		_ = p.tree.AppendChild(listIdx, receiver)

		return p.tree.Allocate(arena.TypeErrorNode, start, p.cur.Start, listIdx)
	}

	nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance()

	listIdx := p.tree.NewChildList()
	_ = p.tree.AppendChild(listIdx, receiver)
	_ = p.tree.AppendChild(listIdx, nameIdx)

	return p.tree.Allocate(arena.TypeFieldAccessExpr, start, p.cur.Start, listIdx)
}

func (p *parser) parseArrayAccess(receiver arena.NodeIndex) (arena.NodeIndex, error) {
	start := p.tree.Start(receiver)
	p.advance() // '['

	index, err := p.parseExpression()
	if err != nil {
		return arena.NoIndex, err
	}

	p.expect("]")

	listIdx := p.tree.NewChildList()
	_ = p.tree.AppendChild(listIdx, receiver)

	if index.Valid() {
		_ = p.tree.AppendChild(listIdx, index)
	}

	return p.tree.Allocate(arena.TypeArrayAccessExpr, start, p.cur.Start, listIdx)
}

func (p *parser) parseCallArgs(callee arena.NodeIndex) (arena.NodeIndex, error) {
	start := p.tree.Start(callee)
	p.advance() // '('

	listIdx := p.tree.NewChildList()
	_ = p.tree.AppendChild(listIdx, callee)

	for !p.isOp(")") && p.cur.Kind != TokenEOF {
		arg, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if arg.Valid() {
			_ = p.tree.AppendChild(listIdx, arg)
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	end := p.cur.End
	p.expect(")")

	return p.tree.Allocate(arena.TypeMethodCallExpr, start, end, listIdx)
}

func (p *parser) parsePrimary() (arena.NodeIndex, error) {
	if err := p.checkSecurity(); err != nil {
		return arena.NoIndex, err
	}

	switch {
	case p.cur.Kind == TokenIntLiteral, p.cur.Kind == TokenFloatLiteral,
		p.cur.Kind == TokenStringLiteral, p.cur.Kind == TokenCharLiteral,
		p.cur.Kind == TokenBoolLiteral, p.cur.Kind == TokenNullLiteral:
		tok := p.cur
		p.advance()

		return p.tree.Allocate(arena.TypeLiteral, tok.Start, tok.End, 0)

	case p.isOp("("):
		p.advance()

		inner, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		p.expect(")")

		return inner, nil

	case p.isKeyword("new"):
		return p.parseNewExpr(arena.NoIndex)

	case p.isKeyword("this") || p.isKeyword("super"):
		tok := p.cur
		p.advance()

		return p.tree.Allocate(arena.TypeIdentifier, tok.Start, tok.End, 0)

	case p.cur.Kind == TokenIdentifier:
		tok := p.cur
		p.advance()

		return p.tree.Allocate(arena.TypeIdentifier, tok.Start, tok.End, 0)

	case p.cur.Kind == TokenKeyword && isPrimitiveOrVar(p.text(p.cur)):
		// Primitive.class / int[].class style expressions.
		tok := p.cur
		p.advance()

		return p.tree.Allocate(arena.TypeIdentifier, tok.Start, tok.End, 0)

	default:
		p.recordError("expression")
		tok := p.cur
		p.advance()

		return p.tree.Allocate(arena.TypeErrorNode, tok.Start, tok.End, 0)
	}
}

// parseNewExpr handles both 'new Type(args)' and 'outer.new Inner(args)',
// including an optional anonymous-class body and array-creation forms.
func (p *parser) parseNewExpr(outer arena.NodeIndex) (arena.NodeIndex, error) {
	start := p.startOffset()
	if outer.Valid() {
		start = p.tree.Start(outer)
	}

	p.advance() // 'new'
	p.skipTypeParameters()

	listIdx := p.tree.NewChildList()
	if outer.Valid() {
		_ = p.tree.AppendChild(listIdx, outer)
	}

	// Consume the created type's name and generic arguments, but not its
	// brackets: skipType would swallow '[]' and '[n]', which the
	// array-creation branch below handles.
	if p.cur.Kind == TokenIdentifier || p.cur.Kind == TokenKeyword {
		p.advance()

		for p.isOp(".") && (p.peek.Kind == TokenIdentifier || p.peek.Kind == TokenKeyword) {
			p.advance()
			p.advance()
		}

		if p.isOp("<") {
			p.skipBalancedAngle()
		}
	}

	if p.isOp("[") {
		for p.isOp("[") {
			p.advance()

			if !p.isOp("]") {
				dim, err := p.parseExpression()
				if err != nil {
					return arena.NoIndex, err
				}

				if dim.Valid() {
					_ = p.tree.AppendChild(listIdx, dim)
				}
			}

			p.expect("]")
		}

		if p.isOp("{") {
			init, err := p.parseArrayInitializer()
			if err != nil {
				return arena.NoIndex, err
			}

			if init.Valid() {
				_ = p.tree.AppendChild(listIdx, init)
			}
		}

		return p.tree.Allocate(arena.TypeNewExpr, start, p.cur.Start, listIdx)
	}

	if p.isOp("(") {
		p.advance()

		for !p.isOp(")") && p.cur.Kind != TokenEOF {
			arg, err := p.parseExpression()
			if err != nil {
				return arena.NoIndex, err
			}

			if arg.Valid() {
				_ = p.tree.AppendChild(listIdx, arg)
			}

			if p.isOp(",") {
				p.advance()

				continue
			}

			break
		}

		p.expect(")")
	}

	if p.isOp("{") {
		bodyListIdx := p.tree.NewChildList()

		body, err := p.tree.Allocate(arena.TypeBlock, p.cur.Start, p.cur.Start, bodyListIdx)
		if err != nil {
			return arena.NoIndex, err
		}

		p.advance() // '{'

		if err := p.parseMemberList(bodyListIdx); err != nil {
			return arena.NoIndex, err
		}

		if err := p.tree.SetEnd(body, p.cur.Start); err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, body)
	}

	return p.tree.Allocate(arena.TypeNewExpr, start, p.cur.Start, listIdx)
}

// looksLikeLambda detects "ident ->" and "(params) ->" without consuming.
func (p *parser) looksLikeLambda() bool {
	if p.cur.Kind == TokenIdentifier && p.peek.Kind == TokenOperator && p.text(p.peek) == "->" {
		return true
	}

	if !p.isOp("(") {
		return false
	}

	save := *p.lx
	savedCur, savedPeek := p.cur, p.peek

	depth := 0
	found := false

	for i := 0; i < 4096; i++ {
		if p.isOp("(") {
			depth++
		} else if p.isOp(")") {
			depth--
			if depth == 0 {
				p.advance()
				found = p.isOp("->")

				break
			}
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

func (p *parser) parseLambda() (arena.NodeIndex, error) {
	start := p.startOffset()

	listIdx := p.tree.NewChildList()

	if p.cur.Kind == TokenIdentifier {
		nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, nameIdx)
		p.advance()
	} else {
		p.advance() // '('

		for !p.isOp(")") && p.cur.Kind != TokenEOF {
			if p.isModifierKeyword() {
				p.advance()
			}

			if p.looksLikeTypedLambdaParam() {
				p.skipType()
			}

			if p.cur.Kind == TokenIdentifier {
				nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
				if err != nil {
					return arena.NoIndex, err
				}

				_ = p.tree.AppendChild(listIdx, nameIdx)
				p.advance()
			}

			if p.isOp(",") {
				p.advance()

				continue
			}

			break
		}

		p.expect(")")
	}

	p.expect("->")

	var body arena.NodeIndex

	var err error

	if p.isOp("{") {
		body, err = p.parseBlock()
	} else {
		body, err = p.parseExpression()
	}

	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	return p.tree.Allocate(arena.TypeLambdaExpr, start, p.cur.Start, listIdx)
}

// looksLikeTypedLambdaParam distinguishes "(Type name" from "(name" within
// a parameter list already known to belong to a lambda.
func (p *parser) looksLikeTypedLambdaParam() bool {
	if p.cur.Kind != TokenIdentifier && p.cur.Kind != TokenKeyword {
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
