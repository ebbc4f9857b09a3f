package parser

import (
	"errors"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// newDeclNode allocates a declaration-shaped cell (one whose Data field is
// a child-list index) and flushes any pending leading comments onto it.
func (p *parser) newDeclNode(tag arena.TypeTag, start uint32) (arena.NodeIndex, uint32, error) {
	listIdx := p.tree.NewChildList()

	idx, err := p.tree.Allocate(tag, start, start, listIdx)
	if err != nil {
		return arena.NoIndex, 0, err
	}

	p.flushLeadingComments(idx)

	return idx, listIdx, nil
}

func (p *parser) finish(idx arena.NodeIndex, end uint32, endLine int) error {
	if err := p.tree.SetEnd(idx, end); err != nil {
		return err
	}

	p.markComplete(idx, endLine)

	return nil
}

func (p *parser) startOffset() uint32 { return p.cur.Start }
func (p *parser) endOffset() uint32   { return p.cur.End }

// parseCompilationUnit is the grammar's entry production: an optional
// package declaration, zero or more imports, and zero or more top-level
// type declarations, with panic-mode recovery between declarations.
func (p *parser) parseCompilationUnit() (arena.NodeIndex, error) {
	start := p.startOffset()

	unit, listIdx, err := p.newDeclNode(arena.TypeCompilationUnit, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if p.isKeyword("package") {
		decl, err := p.parsePackageDecl()
		if err != nil {
			return arena.NoIndex, err
		}

		if decl.Valid() {
			_ = p.tree.AppendChild(listIdx, decl)
		}
	}

	for p.isKeyword("import") {
		decl, err := p.parseImportDecl()
		if err != nil {
			return arena.NoIndex, err
		}

		if decl.Valid() {
			_ = p.tree.AppendChild(listIdx, decl)
		}
	}

	for p.cur.Kind != TokenEOF {
		child, err := p.parseTypeDecl()
		if err != nil {
			var secErr *SecurityError
			if errors.As(err, &secErr) {
				return arena.NoIndex, err
			}

			p.recoverToTopLevel()

			continue
		}

		if child.Valid() {
			_ = p.tree.AppendChild(listIdx, child)
		}
	}

	if err := p.finish(unit, p.endOffset(), p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return unit, nil
}

func (p *parser) parsePackageDecl() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypePackageDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'package'

	if err := p.parseAnnotations(listIdx); err != nil {
		return arena.NoIndex, err
	}

	if err := p.parseQualifiedNameInto(listIdx); err != nil {
		return arena.NoIndex, err
	}

	end := p.endOffset()
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseImportDecl() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeImportDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.advance() // 'import'

	if p.isKeyword("static") {
		p.advance()
	}

	if err := p.parseQualifiedNameInto(listIdx); err != nil {
		return arena.NoIndex, err
	}

	if p.isOp(".") {
		p.advance()
		p.expect("*")
	}

	end := p.endOffset()
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

// parseQualifiedNameInto consumes a dotted identifier chain, appending one
// TypeIdentifier node per segment to listIdx.
func (p *parser) parseQualifiedNameInto(listIdx uint32) error {
	for {
		if p.cur.Kind != TokenIdentifier && p.cur.Kind != TokenKeyword {
			p.recordError("identifier")

			return nil
		}

		idx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return err
		}

		_ = p.tree.AppendChild(listIdx, idx)
		p.advance()

		if p.isOp(".") && (p.peek.Kind == TokenIdentifier) {
			p.advance()

			continue
		}

		return nil
	}
}

// parseAnnotations consumes zero or more '@Name(...)' annotations,
// appending each to listIdx.
func (p *parser) parseAnnotations(listIdx uint32) error {
	for p.isOp("@") {
		start := p.startOffset()
		p.advance()

		node, innerList, err := p.newDeclNode(arena.TypeAnnotation, start)
		if err != nil {
			return err
		}

		if err := p.parseQualifiedNameInto(innerList); err != nil {
			return err
		}

		if p.isOp("(") {
			depth := 0

			for {
				if p.isOp("(") {
					depth++
				}

				if p.isOp(")") {
					depth--
					if depth == 0 {
						p.advance()

						break
					}
				}

				if p.cur.Kind == TokenEOF {
					break
				}

				p.advance()
			}
		}

		if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
			return err
		}

		_ = p.tree.AppendChild(listIdx, node)
	}

	return nil
}

var modifierKeywords = []string{
	"public", "private", "protected", "static", "final", "abstract",
	"synchronized", "native", "transient", "volatile", "strictfp", "default",
	"sealed", "non-sealed",
}

func (p *parser) isModifierKeyword() bool {
	for _, kw := range modifierKeywords {
		if p.isKeyword(kw) {
			return true
		}
	}

	return false
}

// parseModifiers consumes interleaved annotations and modifier keywords,
// returning a TypeModifierList node.
func (p *parser) parseModifiers() (arena.NodeIndex, error) {
	start := p.startOffset()

	node, listIdx, err := p.newDeclNode(arena.TypeModifierList, start)
	if err != nil {
		return arena.NoIndex, err
	}

	for {
		if p.isOp("@") {
			if err := p.parseAnnotations(listIdx); err != nil {
				return arena.NoIndex, err
			}

			continue
		}

		if p.isModifierKeyword() {
			idx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
			if err != nil {
				return arena.NoIndex, err
			}

			_ = p.tree.AppendChild(listIdx, idx)
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

// parseTypeDecl dispatches on the keyword following modifiers: class,
// interface, enum, record, or @interface (annotation type).
func (p *parser) parseTypeDecl() (arena.NodeIndex, error) {
	if err := p.checkSecurity(); err != nil {
		return arena.NoIndex, err
	}

	if err := p.enter(); err != nil {
		return arena.NoIndex, err
	}
	defer p.leave()

	start := p.startOffset()

	mods, err := p.parseModifiers()
	if err != nil {
		return arena.NoIndex, err
	}

	switch {
	case p.isKeyword("class"):
		return p.parseClassLike(arena.TypeClassDecl, start, mods, true)
	case p.isKeyword("interface"):
		return p.parseClassLike(arena.TypeInterfaceDecl, start, mods, false)
	case p.isKeyword("enum"):
		return p.parseEnumDecl(start, mods)
	case p.isKeyword("record"):
		return p.parseClassLike(arena.TypeRecordDecl, start, mods, true)
	case p.isOp("@") && p.peek.Kind == TokenKeyword:
		return p.parseClassLike(arena.TypeAnnotationDecl, start, mods, false)
	case p.isOp(";"):
		p.advance()

		return arena.NoIndex, nil
	default:
		p.recordError("type declaration")
		p.recoverToTopLevel()

		return arena.NoIndex, nil
	}
}

// parseClassLike handles class, interface, record, and annotation-type
// bodies, which share the shape: keyword, name, optional generics/extends/
// implements/record-header, then a brace-delimited member list.
func (p *parser) parseClassLike(tag arena.TypeTag, start uint32, mods arena.NodeIndex, allowExtends bool) (arena.NodeIndex, error) {
	node, listIdx, err := p.newDeclNode(tag, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if mods.Valid() {
		_ = p.tree.AppendChild(listIdx, mods)
	}

	if p.isOp("@") {
		p.advance() // '@' of '@interface'
	}

	p.advance() // class/interface/enum/record keyword

	if p.cur.Kind == TokenIdentifier {
		nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, nameIdx)
		p.advance()
	} else {
		p.recordError("type name")
	}

	p.skipTypeParameters()

	if tag == arena.TypeRecordDecl && p.isOp("(") {
		if err := p.parseParameterList(listIdx); err != nil {
			return arena.NoIndex, err
		}
	}

	if allowExtends && p.isKeyword("extends") {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	if p.isKeyword("implements") || (tag == arena.TypeInterfaceDecl && p.isKeyword("extends")) {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	if p.isKeyword("permits") {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	if err := p.parseClassBody(listIdx); err != nil {
		return arena.NoIndex, err
	}

	end := p.cur.Start

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseEnumDecl(start uint32, mods arena.NodeIndex) (arena.NodeIndex, error) {
	node, listIdx, err := p.newDeclNode(arena.TypeEnumDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if mods.Valid() {
		_ = p.tree.AppendChild(listIdx, mods)
	}

	p.advance() // 'enum'

	if p.cur.Kind == TokenIdentifier {
		nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, nameIdx)
		p.advance()
	}

	if p.isKeyword("implements") {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	p.expect("{")

	for p.cur.Kind == TokenIdentifier || p.isOp("@") {
		if err := p.parseAnnotations(listIdx); err != nil {
			return arena.NoIndex, err
		}

		if p.cur.Kind != TokenIdentifier {
			break
		}

		constIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
		if err != nil {
			return arena.NoIndex, err
		}

		_ = p.tree.AppendChild(listIdx, constIdx)
		p.advance()

		if p.isOp("(") {
			p.skipBalanced("(", ")")
		}

		if p.isOp("{") {
			p.skipBalanced("{", "}")
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	if p.isOp(";") {
		p.advance()

		// parseMemberList consumes the closing '}'.
		if err := p.parseMemberList(listIdx); err != nil {
			return arena.NoIndex, err
		}
	} else {
		p.expect("}")
	}

	if err := p.finish(node, p.cur.Start, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseClassBody(ownerListIdx uint32) error {
	if !p.expect("{") {
		return nil
	}

	return p.parseMemberList(ownerListIdx)
}

func (p *parser) parseMemberList(ownerListIdx uint32) error {
	for !p.isOp("}") && p.cur.Kind != TokenEOF {
		if p.isOp(";") {
			p.advance()

			continue
		}

		member, err := p.parseMember()
		if err != nil {
			var secErr *SecurityError
			if errors.As(err, &secErr) {
				return err
			}

			p.recoverToMemberBoundary()

			continue
		}

		if member.Valid() {
			_ = p.tree.AppendChild(ownerListIdx, member)
		}
	}

	p.expect("}")

	return nil
}

// recoverToMemberBoundary skips tokens until the next statement/member
// terminator at the current brace depth, or a closing brace.
func (p *parser) recoverToMemberBoundary() {
	depth := 0

	for p.cur.Kind != TokenEOF {
		if p.isOp("{") {
			depth++
		}

		if p.isOp("}") {
			if depth == 0 {
				return
			}

			depth--
		}

		if depth == 0 && p.isOp(";") {
			p.advance()

			return
		}

		p.advance()
	}
}

// parseMember parses one class/interface/record body member: a nested type
// declaration, field, constructor, or method.
func (p *parser) parseMember() (arena.NodeIndex, error) {
	if err := p.checkSecurity(); err != nil {
		return arena.NoIndex, err
	}

	if err := p.enter(); err != nil {
		return arena.NoIndex, err
	}
	defer p.leave()

	start := p.startOffset()

	switch {
	case p.isKeyword("class") || p.isKeyword("interface") || p.isKeyword("enum") || p.isKeyword("record"):
		return p.parseTypeDecl()
	case p.isOp("{"):
		return p.parseBlock()
	}

	mods, err := p.parseModifiers()
	if err != nil {
		return arena.NoIndex, err
	}

	if p.isKeyword("class") || p.isKeyword("interface") || p.isKeyword("enum") || p.isKeyword("record") ||
		(p.isOp("@") && p.peek.Kind == TokenKeyword) {
		return p.continueTypeDecl(start, mods)
	}

	if p.isOp("{") {
		return p.parseBlock()
	}

	p.skipTypeParameters() // generic method: <T> T foo(...)

	// Constructor: identifier directly followed by '('.
	if p.cur.Kind == TokenIdentifier && p.peek.Kind == TokenPunct && p.text(p.peek) == "(" {
		return p.parseConstructorDecl(start, mods)
	}

	p.skipType() // return type, or field/parameter type

	if p.cur.Kind != TokenIdentifier {
		p.recordError("member name")
		p.recoverToMemberBoundary()

		return arena.NoIndex, nil
	}

	name := p.cur

	if p.peek.Kind == TokenPunct && p.text(p.peek) == "(" {
		return p.parseMethodDecl(start, mods, name)
	}

	return p.parseFieldDecl(start, mods, name)
}

func (p *parser) continueTypeDecl(start uint32, mods arena.NodeIndex) (arena.NodeIndex, error) {
	switch {
	case p.isKeyword("class"):
		return p.parseClassLike(arena.TypeClassDecl, start, mods, true)
	case p.isKeyword("interface"):
		return p.parseClassLike(arena.TypeInterfaceDecl, start, mods, false)
	case p.isKeyword("enum"):
		return p.parseEnumDecl(start, mods)
	case p.isKeyword("record"):
		return p.parseClassLike(arena.TypeRecordDecl, start, mods, true)
	default:
		return p.parseClassLike(arena.TypeAnnotationDecl, start, mods, false)
	}
}

func (p *parser) parseFieldDecl(start uint32, mods arena.NodeIndex, _ Token) (arena.NodeIndex, error) {
	node, listIdx, err := p.newDeclNode(arena.TypeFieldDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if mods.Valid() {
		_ = p.tree.AppendChild(listIdx, mods)
	}

	for {
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

	end := p.cur.End
	p.expect(";")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

// parseVariableInitializer handles either an expression or an array
// initializer ('{ ... }'), per Java's VariableInitializer production.
func (p *parser) parseVariableInitializer() (arena.NodeIndex, error) {
	if p.isOp("{") {
		return p.parseArrayInitializer()
	}

	return p.parseExpression()
}

func (p *parser) parseArrayInitializer() (arena.NodeIndex, error) {
	start := p.startOffset()
	node, listIdx, err := p.newDeclNode(arena.TypeLiteral, start)
	if err != nil {
		return arena.NoIndex, err
	}

	p.expect("{")

	for !p.isOp("}") && p.cur.Kind != TokenEOF {
		val, err := p.parseVariableInitializer()
		if err != nil {
			return arena.NoIndex, err
		}

		if val.Valid() {
			_ = p.tree.AppendChild(listIdx, val)
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	end := p.cur.End
	p.expect("}")

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseConstructorDecl(start uint32, mods arena.NodeIndex) (arena.NodeIndex, error) {
	node, listIdx, err := p.newDeclNode(arena.TypeConstructorDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if mods.Valid() {
		_ = p.tree.AppendChild(listIdx, mods)
	}

	nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	_ = p.tree.AppendChild(listIdx, nameIdx)
	p.advance()

	if err := p.parseParameterList(listIdx); err != nil {
		return arena.NoIndex, err
	}

	if p.isKeyword("throws") {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return arena.NoIndex, err
	}

	if body.Valid() {
		_ = p.tree.AppendChild(listIdx, body)
	}

	end := p.cur.Start

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseMethodDecl(start uint32, mods arena.NodeIndex, name Token) (arena.NodeIndex, error) {
	node, listIdx, err := p.newDeclNode(arena.TypeMethodDecl, start)
	if err != nil {
		return arena.NoIndex, err
	}

	if mods.Valid() {
		_ = p.tree.AppendChild(listIdx, mods)
	}

	nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, name.Start, name.End, 0)
	if err != nil {
		return arena.NoIndex, err
	}

	_ = p.tree.AppendChild(listIdx, nameIdx)
	p.advance()

	if err := p.parseParameterList(listIdx); err != nil {
		return arena.NoIndex, err
	}

	for p.isOp("[") {
		p.advance()
		p.expect("]")
	}

	if p.isKeyword("throws") {
		p.advance()
		p.skipType()

		for p.isOp(",") {
			p.advance()
			p.skipType()
		}
	}

	var end uint32

	switch {
	case p.isOp("{"):
		body, err := p.parseBlock()
		if err != nil {
			return arena.NoIndex, err
		}

		if body.Valid() {
			_ = p.tree.AppendChild(listIdx, body)
		}

		end = p.cur.Start
	case p.isKeyword("default"):
		// annotation-type element default value.
		p.advance()

		val, err := p.parseExpression()
		if err != nil {
			return arena.NoIndex, err
		}

		if val.Valid() {
			_ = p.tree.AppendChild(listIdx, val)
		}

		end = p.cur.End
		p.expect(";")
	default:
		end = p.cur.End
		p.expect(";")
	}

	if err := p.finish(node, end, p.cur.Line); err != nil {
		return arena.NoIndex, err
	}

	return node, nil
}

func (p *parser) parseParameterList(ownerListIdx uint32) error {
	if !p.expect("(") {
		return nil
	}

	paramsListIdx := p.tree.NewChildList()

	paramsNode, err := p.tree.Allocate(arena.TypeParameter, p.cur.Start, p.cur.Start, paramsListIdx)
	if err != nil {
		return err
	}

	for !p.isOp(")") && p.cur.Kind != TokenEOF {
		if err := p.parseAnnotations(paramsListIdx); err != nil {
			return err
		}

		for p.isModifierKeyword() {
			p.advance() // final, etc.
		}

		p.skipType()

		if p.isOp("...") {
			p.advance()
		}

		if p.cur.Kind == TokenIdentifier {
			nameIdx, err := p.tree.Allocate(arena.TypeIdentifier, p.cur.Start, p.cur.End, 0)
			if err != nil {
				return err
			}

			_ = p.tree.AppendChild(paramsListIdx, nameIdx)
			p.advance()
		}

		for p.isOp("[") {
			p.advance()
			p.expect("]")
		}

		if p.isOp(",") {
			p.advance()

			continue
		}

		break
	}

	end := p.cur.End

	if err := p.tree.SetEnd(paramsNode, end); err != nil {
		return err
	}

	p.expect(")")

	return p.tree.AppendChild(ownerListIdx, paramsNode)
}

// skipTypeParameters consumes an optional '<...>' generic parameter list
// without constructing nodes for it (the formatter core treats type-level
// generics as opaque spans; spacing rules operate on the token stream).
func (p *parser) skipTypeParameters() {
	if !p.isOp("<") {
		return
	}

	p.skipBalancedAngle()
}

func (p *parser) skipBalancedAngle() {
	depth := 0

	for {
		if p.isOp("<") {
			depth++
			p.advance()

			continue
		}

		if p.isOp(">") {
			depth--
			p.advance()

			if depth == 0 {
				return
			}

			continue
		}

		if p.isOp(">>") {
			depth -= 2
			p.advance()

			if depth <= 0 {
				return
			}

			continue
		}

		if p.isOp(">>>") {
			depth -= 3
			p.advance()

			if depth <= 0 {
				return
			}

			continue
		}

		if p.cur.Kind == TokenEOF || p.isOp(";") || p.isOp("{") {
			return
		}

		p.advance()
	}
}

// skipType consumes a type reference: primitive or qualified name, optional
// generic arguments, optional array brackets.
func (p *parser) skipType() {
	if p.cur.Kind != TokenIdentifier && p.cur.Kind != TokenKeyword {
		return
	}

	p.advance()

	for p.isOp(".") && (p.peek.Kind == TokenIdentifier || p.peek.Kind == TokenKeyword) {
		p.advance()
		p.advance()
	}

	if p.isOp("<") {
		p.skipBalancedAngle()
	}

	for p.isOp("[") {
		p.advance()
		p.expect("]")
	}

	if p.isOp("...") {
		p.advance()
	}
}

func (p *parser) skipBalanced(open, close string) {
	depth := 0

	for {
		if p.isOp(open) {
			depth++
		} else if p.isOp(close) {
			depth--
		}

		if p.cur.Kind == TokenEOF {
			return
		}

		p.advance()

		if depth == 0 {
			return
		}
	}
}
