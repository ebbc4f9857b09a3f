package arena

// NodeIndex is an opaque handle into an Arena's cell vector. Indices are
// never reordered after allocation; the sentinel NoIndex is distinguished
// from every valid index.
type NodeIndex uint32

// NoIndex is the sentinel value meaning "no node".
const NoIndex NodeIndex = ^NodeIndex(0)

// Valid reports whether i refers to an allocated cell (cheap check only;
// callers still need Arena.Len() to know whether i is *live*).
func (i NodeIndex) Valid() bool {
	return i != NoIndex
}

// TypeTag identifies the syntactic kind of a cell. Polymorphism that would
// be virtual dispatch in an object AST becomes a switch over TypeTag plus
// a visitor, per spec.md's "deep inheritance" design note.
type TypeTag uint32

// Recognized node types. New tags may be appended; existing values are
// part of the on-disk/in-memory contract and must never be renumbered.
const (
	TypeInvalid TypeTag = iota
	TypeCompilationUnit
	TypePackageDecl
	TypeImportDecl
	TypeClassDecl
	TypeInterfaceDecl
	TypeEnumDecl
	TypeRecordDecl
	TypeAnnotationDecl
	TypeFieldDecl
	TypeMethodDecl
	TypeConstructorDecl
	TypeParameter
	TypeBlock
	TypeExprStatement
	TypeIfStatement
	TypeForStatement
	TypeWhileStatement
	TypeDoStatement
	TypeSwitchStatement
	TypeTryStatement
	TypeReturnStatement
	TypeThrowStatement
	TypeBreakStatement
	TypeContinueStatement
	TypeLocalVarDecl
	TypeIdentifier
	TypeLiteral
	TypeBinaryExpr
	TypeUnaryExpr
	TypeAssignmentExpr
	TypeMethodCallExpr
	TypeFieldAccessExpr
	TypeNewExpr
	TypeArrayAccessExpr
	TypeCastExpr
	TypeLambdaExpr
	TypeAnnotation
	TypeModifierList
	TypeErrorNode
)

// String returns a human-readable name for a TypeTag, used in diagnostics.
func (t TypeTag) String() string {
	if name, ok := typeTagNames[t]; ok {
		return name
	}

	return "unknown"
}

var typeTagNames = map[TypeTag]string{
	TypeInvalid:           "invalid",
	TypeCompilationUnit:   "compilation_unit",
	TypePackageDecl:       "package_decl",
	TypeImportDecl:        "import_decl",
	TypeClassDecl:         "class_decl",
	TypeInterfaceDecl:     "interface_decl",
	TypeEnumDecl:          "enum_decl",
	TypeRecordDecl:        "record_decl",
	TypeAnnotationDecl:    "annotation_decl",
	TypeFieldDecl:         "field_decl",
	TypeMethodDecl:        "method_decl",
	TypeConstructorDecl:   "constructor_decl",
	TypeParameter:         "parameter",
	TypeBlock:             "block",
	TypeExprStatement:     "expr_statement",
	TypeIfStatement:       "if_statement",
	TypeForStatement:      "for_statement",
	TypeWhileStatement:    "while_statement",
	TypeDoStatement:       "do_statement",
	TypeSwitchStatement:   "switch_statement",
	TypeTryStatement:      "try_statement",
	TypeReturnStatement:   "return_statement",
	TypeThrowStatement:    "throw_statement",
	TypeBreakStatement:    "break_statement",
	TypeContinueStatement: "continue_statement",
	TypeLocalVarDecl:      "local_var_decl",
	TypeIdentifier:        "identifier",
	TypeLiteral:           "literal",
	TypeBinaryExpr:        "binary_expr",
	TypeUnaryExpr:         "unary_expr",
	TypeAssignmentExpr:    "assignment_expr",
	TypeMethodCallExpr:    "method_call_expr",
	TypeFieldAccessExpr:   "field_access_expr",
	TypeNewExpr:           "new_expr",
	TypeArrayAccessExpr:   "array_access_expr",
	TypeCastExpr:          "cast_expr",
	TypeLambdaExpr:        "lambda_expr",
	TypeAnnotation:        "annotation",
	TypeModifierList:      "modifier_list",
	TypeErrorNode:         "error_node",
}

// declNodeTypes is the set of tags whose Data field is a child-list index
// rather than a token length or symbol index.
var declNodeTypes = map[TypeTag]bool{
	TypeCompilationUnit: true,
	TypePackageDecl:     true,
	TypeImportDecl:      true,
	TypeClassDecl:       true,
	TypeInterfaceDecl:   true,
	TypeEnumDecl:        true,
	TypeRecordDecl:      true,
	TypeAnnotationDecl:  true,
	TypeFieldDecl:       true,
	TypeMethodDecl:      true,
	TypeConstructorDecl: true,
	TypeParameter:       true,
	TypeBlock:           true,
	TypeExprStatement:   true,
	TypeIfStatement:     true,
	TypeForStatement:    true,
	TypeWhileStatement:  true,
	TypeDoStatement:     true,
	TypeSwitchStatement: true,
	TypeTryStatement:    true,
	TypeReturnStatement: true,
	TypeThrowStatement:  true,
	TypeLocalVarDecl:    true,
	TypeBinaryExpr:      true,
	TypeUnaryExpr:       true,
	TypeAssignmentExpr:  true,
	TypeMethodCallExpr:  true,
	TypeFieldAccessExpr: true,
	TypeNewExpr:         true,
	TypeArrayAccessExpr: true,
	TypeCastExpr:        true,
	TypeLambdaExpr:      true,
	TypeAnnotation:      true,
	TypeModifierList:    true,
}

// HasChildList reports whether cells of this type interpret their Data
// field as an index into the arena's child-list side table.
func (t TypeTag) HasChildList() bool {
	return declNodeTypes[t]
}

// Cell is the 16-byte packed representation of one AST node. Offsets are
// byte positions into the source text; Data's meaning is fixed per TypeTag
// (child-list index for declarations, token length for literals/
// identifiers, symbol-table index for references).
type Cell struct {
	TypeTag     TypeTag
	StartOffset uint32
	EndOffset   uint32
	Data        uint32
}
