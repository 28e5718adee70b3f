// Package rustbackend implements the Tier-1 Rust domain.ParserBackend using
// go-tree-sitter's Rust grammar binding, grounded on the teacher's
// internal/parser package (sitter.NewParser/SetLanguage/ParseCtx) and on
// standardbeagle-lci's tree-sitter node-walking idiom.
package rustbackend

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/parser/tsutil"
)

// Backend implements domain.ParserBackend for Rust source files.
type Backend struct {
	parser *sitter.Parser
}

// New builds a Rust Backend.
func New() *Backend {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Backend{parser: p}
}

func (b *Backend) Language() string    { return "rust" }
func (b *Backend) Extensions() []string { return []string{".rs"} }

// ParseFile parses source with the Rust grammar and lowers the resulting
// concrete syntax tree into a domain.FileAst.
func (b *Backend) ParseFile(path string, source []byte) (*domain.FileAst, *domain.AnalysisError) {
	tree, err := b.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, domain.NewParseError(path, "tree-sitter-rust failed to parse", err)
	}
	root := tree.RootNode()

	c := &converter{path: path, source: source}
	ast := &domain.FileAst{FilePath: path, Language: "rust", LineCount: tsutil.LineCount(source)}

	for _, child := range tsutil.Children(root) {
		c.convertItem(child, "", ast)
	}

	return ast, nil
}

// RecognizeFrameworkPatterns implements domain.ParserBackend's per-language
// hook for framework-call recognition beyond the generic glob rules — Rust
// has no built-in equivalent to attribute-driven web-framework handlers
// worth a language-specific rule, so this always reports no match.
func (b *Backend) RecognizeFrameworkPatterns(fn *domain.FunctionRecord) (string, bool) {
	return "", false
}

type converter struct {
	path   string
	source []byte
}

// convertItem handles a top-level (or impl/trait-body) item: function, type
// declaration, impl block, use statement, or nested module.
func (c *converter) convertItem(n *sitter.Node, parentType string, ast *domain.FileAst) {
	switch n.Type() {
	case "function_item":
		fn := c.convertFunction(n, parentType, "")
		if fn != nil {
			ast.Functions = append(ast.Functions, fn)
		}
	case "struct_item":
		ast.Types = append(ast.Types, c.convertTypeDef(n, domain.TypeKindStruct, ast))
	case "enum_item":
		ast.Types = append(ast.Types, c.convertTypeDef(n, domain.TypeKindEnum, ast))
	case "trait_item":
		c.convertTrait(n, ast)
	case "impl_item":
		c.convertImpl(n, ast)
	case "use_declaration":
		ast.Imports = append(ast.Imports, c.convertImport(n))
	case "mod_item":
		if body := tsutil.Field(n, "body"); body != nil {
			for _, child := range tsutil.Children(body) {
				c.convertItem(child, parentType, ast)
			}
		}
	}
}

func (c *converter) convertTypeDef(n *sitter.Node, kind domain.TypeKind, ast *domain.FileAst) *domain.TypeDefinition {
	name := tsutil.Text(tsutil.Field(n, "name"), c.source)
	loc := tsutil.Location(c.path, n)
	return &domain.TypeDefinition{
		QualifiedName: name,
		Kind:          kind,
		File:          c.path,
		DefLine:       loc.StartLine,
		Fields:        c.structFields(n),
	}
}

func (c *converter) structFields(n *sitter.Node) []domain.FieldDefinition {
	body := tsutil.Field(n, "body")
	if body == nil {
		return nil
	}
	var fields []domain.FieldDefinition
	idx := 0
	for _, child := range tsutil.ChildrenOfType(body, "field_declaration") {
		name := tsutil.Text(tsutil.Field(child, "name"), c.source)
		typ := tsutil.Text(tsutil.Field(child, "type"), c.source)
		if name == "" {
			continue
		}
		fields = append(fields, domain.FieldDefinition{Name: name, Index: idx, ResolvedType: typ})
		idx++
	}
	return fields
}

func (c *converter) convertTrait(n *sitter.Node, ast *domain.FileAst) {
	name := tsutil.Text(tsutil.Field(n, "name"), c.source)
	loc := tsutil.Location(c.path, n)
	def := &domain.TypeDefinition{QualifiedName: name, Kind: domain.TypeKindTrait, File: c.path, DefLine: loc.StartLine}

	body := tsutil.Field(n, "body")
	for _, child := range tsutil.Children(body) {
		if child.Type() != "function_item" {
			continue
		}
		fn := c.convertFunction(child, "", name)
		if fn != nil {
			ast.Functions = append(ast.Functions, fn)
			def.Methods = append(def.Methods, fn.ID)
		}
	}
	ast.Types = append(ast.Types, def)
}

func (c *converter) convertImpl(n *sitter.Node, ast *domain.FileAst) {
	typeName := tsutil.Text(tsutil.Field(n, "type"), c.source)
	traitNode := tsutil.Field(n, "trait")
	traitName := ""
	if traitNode != nil {
		traitName = tsutil.Text(traitNode, c.source)
	}

	loc := tsutil.Location(c.path, n)
	ast.Impls = append(ast.Impls, &domain.ImplBinding{TypeName: typeName, TraitName: traitName, Line: loc.StartLine})

	body := tsutil.Field(n, "body")
	for _, child := range tsutil.Children(body) {
		if child.Type() != "function_item" {
			continue
		}
		fn := c.convertFunction(child, typeName, traitName)
		if fn != nil {
			ast.Functions = append(ast.Functions, fn)
		}
	}
}

func (c *converter) convertImport(n *sitter.Node) domain.ImportDirective {
	loc := tsutil.Location(c.path, n)
	return domain.ImportDirective{Path: strings.TrimSuffix(strings.TrimPrefix(tsutil.Text(n, c.source), "use "), ";"), Line: loc.StartLine}
}

func (c *converter) convertFunction(n *sitter.Node, parentType, implementedTrait string) *domain.FunctionRecord {
	nameNode := tsutil.Field(n, "name")
	if nameNode == nil {
		return nil
	}
	name := tsutil.Text(nameNode, c.source)
	qualified := domain.QualifiedFunctionName(parentType, name)
	loc := tsutil.Location(c.path, n)

	params, returnKind, returnType := c.signature(n)
	bodyTs := tsutil.Field(n, "body")
	body := c.convertBlock(bodyTs, name)

	bodySpan := loc
	if bodyTs != nil {
		bodySpan = tsutil.Location(c.path, bodyTs)
	}

	fn := &domain.FunctionRecord{
		ID:                domain.FunctionId{FilePath: c.path, QualifiedName: qualified, DefinitionLine: loc.StartLine},
		Span:              loc,
		BodySpan:          bodySpan,
		Signature:         domain.Signature{Params: params, ReturnKind: returnKind, ReturnType: returnType},
		Visibility:        c.visibility(n),
		ParentType:        parentType,
		ImplementedTrait:  implementedTrait,
		ModulePath:        c.path,
		Language:          "rust",
		Body:              body,
	}
	fn.Attributes = c.attributes(n, fn)
	return fn
}

func (c *converter) visibility(n *sitter.Node) domain.Visibility {
	for _, child := range tsutil.Children(n) {
		if child.Type() == "visibility_modifier" {
			return domain.VisibilityPublic
		}
	}
	return domain.VisibilityPrivate
}

// attributes inspects the preceding sibling chain for #[test] / #[bench]
// attributes, since tree-sitter-rust attaches attribute_item as a sibling
// rather than a child of the item it decorates.
func (c *converter) attributes(n *sitter.Node, fn *domain.FunctionRecord) []domain.Attribute {
	var attrs []domain.Attribute
	prev := n.PrevSibling()
	for prev != nil && prev.Type() == "attribute_item" {
		text := tsutil.Text(prev, c.source)
		fn.RawAttrs = append(fn.RawAttrs, text)
		switch {
		case strings.Contains(text, "test"):
			attrs = append(attrs, domain.AttributeTest)
		case strings.Contains(text, "bench"):
			attrs = append(attrs, domain.AttributeBenchmark)
		case strings.Contains(text, "no_mangle") || strings.Contains(text, "pub"):
			attrs = append(attrs, domain.AttributeExport)
		}
		prev = prev.PrevSibling()
	}
	return attrs
}

func (c *converter) signature(n *sitter.Node) ([]domain.Parameter, domain.ReturnKind, string) {
	var params []domain.Parameter
	paramList := tsutil.Field(n, "parameters")
	for _, p := range tsutil.Children(paramList) {
		switch p.Type() {
		case "parameter":
			pname := tsutil.Text(tsutil.Field(p, "pattern"), c.source)
			ptype := tsutil.Text(tsutil.Field(p, "type"), c.source)
			params = append(params, domain.Parameter{Name: pname, Type: ptype})
		case "self_parameter":
			params = append(params, domain.Parameter{Name: "self", Type: "Self"})
		}
	}

	retNode := tsutil.Field(n, "return_type")
	if retNode == nil {
		return params, domain.ReturnKindNone, ""
	}
	retType := tsutil.Text(retNode, c.source)
	kind := domain.ReturnKindValue
	switch {
	case strings.HasPrefix(retType, "Result<") || retType == "Result":
		kind = domain.ReturnKindResult
	case strings.HasPrefix(retType, "Option<") || retType == "Option":
		kind = domain.ReturnKindOption
	}
	return params, kind, retType
}

// convertBlock lowers a tree-sitter block into the generic domain.Node
// shape the analyzers walk, recursing through every statement- and
// expression-level construct relevant to §4.2's decision-point vocabulary.
func (c *converter) convertBlock(n *sitter.Node, selfFuncName string) *domain.Node {
	if n == nil {
		return nil
	}
	block := &domain.Node{Type: domain.NodeBlock, Location: tsutil.Location(c.path, n)}
	for _, stmt := range tsutil.Children(n) {
		if conv := c.convertStmt(stmt, selfFuncName); conv != nil {
			block.Body = append(block.Body, conv)
		}
	}
	return block
}

func (c *converter) convertStmt(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	switch n.Type() {
	case "expression_statement":
		for _, child := range tsutil.Children(n) {
			if child.Type() != ";" {
				return &domain.Node{Type: domain.NodeExprStmt, Location: loc, Children: []*domain.Node{c.convertExpr(child, self)}}
			}
		}
		return nil
	case "let_declaration":
		value := tsutil.Field(n, "value")
		var right *domain.Node
		if value != nil {
			right = c.convertExpr(value, self)
		}
		return &domain.Node{Type: domain.NodeAssign, Location: loc, Left: c.convertExpr(tsutil.Field(n, "pattern"), self), Right: right}
	case "return_expression":
		var val *domain.Node
		if len(tsutil.Children(n)) > 1 {
			val = c.convertExpr(n.Child(1), self)
		}
		return &domain.Node{Type: domain.NodeReturn, Location: loc, Children: nonNil(val)}
	case "if_expression", "if_let_expression":
		return c.convertIf(n, self)
	case "for_expression":
		return &domain.Node{Type: domain.NodeFor, Location: loc, Iter: c.convertExpr(tsutil.Field(n, "value"), self), Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "while_expression", "while_let_expression":
		return &domain.Node{Type: domain.NodeWhile, Location: loc, Test: c.convertExpr(tsutil.Field(n, "condition"), self), Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "loop_expression":
		return &domain.Node{Type: domain.NodeLoop, Location: loc, Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "match_expression":
		return c.convertMatch(n, self)
	case "break_expression":
		return &domain.Node{Type: domain.NodeBreak, Location: loc}
	case "continue_expression":
		return &domain.Node{Type: domain.NodeContinue, Location: loc}
	case "block":
		return c.convertBlock(n, self)
	default:
		return c.convertExpr(n, self)
	}
}

func nonNil(n *domain.Node) []*domain.Node {
	if n == nil {
		return nil
	}
	return []*domain.Node{n}
}

func blockBody(b *domain.Node) []*domain.Node {
	if b == nil {
		return nil
	}
	return b.Body
}

func (c *converter) convertIf(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	node := &domain.Node{
		Type:     domain.NodeIf,
		Location: loc,
		Test:     c.convertExpr(tsutil.Field(n, "condition"), self),
		Body:     blockBody(c.convertBlock(tsutil.Field(n, "consequence"), self)),
	}
	alt := tsutil.Field(n, "alternative")
	if alt == nil {
		return node
	}
	switch alt.Type() {
	case "if_expression", "if_let_expression":
		elif := c.convertIf(alt, self)
		elif.Type = domain.NodeElifClause
		node.Orelse = []*domain.Node{elif}
	case "block":
		node.Orelse = []*domain.Node{{Type: domain.NodeElseClause, Location: tsutil.Location(c.path, alt), Body: blockBody(c.convertBlock(alt, self))}}
	}
	return node
}

func (c *converter) convertMatch(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	node := &domain.Node{Type: domain.NodeMatch, Location: loc, Test: c.convertExpr(tsutil.Field(n, "value"), self)}
	body := tsutil.Field(n, "body")
	for _, arm := range tsutil.ChildrenOfType(body, "match_arm") {
		armLoc := tsutil.Location(c.path, arm)
		value := tsutil.Field(arm, "value")
		armNode := &domain.Node{Type: domain.NodeMatchArm, Location: armLoc}
		if value != nil {
			armNode.Body = []*domain.Node{c.convertExpr(value, self)}
		}
		node.Children = append(node.Children, armNode)
	}
	return node
}

func (c *converter) convertExpr(n *sitter.Node, self string) *domain.Node {
	if n == nil {
		return nil
	}
	loc := tsutil.Location(c.path, n)
	switch n.Type() {
	case "binary_expression":
		op := c.operatorText(n)
		left := c.convertExpr(tsutil.Field(n, "left"), self)
		right := c.convertExpr(tsutil.Field(n, "right"), self)
		if op == "&&" || op == "||" {
			return &domain.Node{Type: domain.NodeLogicalOp, Location: loc, Op: op, Left: left, Right: right}
		}
		return &domain.Node{Type: domain.NodeBinOp, Location: loc, Op: op, Left: left, Right: right}
	case "unary_expression":
		return &domain.Node{Type: domain.NodeUnaryOp, Location: loc, Left: c.convertExpr(tsutil.Field(n, "argument"), self)}
	case "assignment_expression":
		return &domain.Node{Type: domain.NodeAssign, Location: loc, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "compound_assignment_expr":
		return &domain.Node{Type: domain.NodeAugAssign, Location: loc, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "call_expression":
		return c.convertCall(n, self)
	case "macro_invocation":
		return c.convertMacro(n, self)
	case "field_expression":
		base := c.convertExpr(tsutil.Field(n, "value"), self)
		field := tsutil.Text(tsutil.Field(n, "field"), c.source)
		return &domain.Node{Type: domain.NodeAttribute, Location: loc, Name: field, Left: base}
	case "closure_expression":
		return &domain.Node{Type: domain.NodeClosure, Location: loc, Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "if_expression":
		ifNode := c.convertIf(n, self)
		return &domain.Node{Type: domain.NodeTernary, Location: loc, Test: ifNode.Test, Body: ifNode.Body, Orelse: ifNode.Orelse}
	case "identifier", "field_identifier", "type_identifier":
		return &domain.Node{Type: domain.NodeIdentifier, Location: loc, Name: tsutil.Text(n, c.source)}
	case "integer_literal", "string_literal", "boolean_literal", "char_literal", "float_literal":
		return &domain.Node{Type: domain.NodeLiteral, Location: loc, Value: tsutil.Text(n, c.source)}
	case "await_expression":
		return &domain.Node{Type: domain.NodeAwait, Location: loc, Left: c.convertExpr(n.Child(0), self)}
	case "parenthesized_expression":
		for _, child := range tsutil.Children(n) {
			if child.Type() != "(" && child.Type() != ")" {
				return c.convertExpr(child, self)
			}
		}
		return nil
	default:
		return &domain.Node{Type: domain.NodeIdentifier, Location: loc, Name: tsutil.Text(n, c.source)}
	}
}

func (c *converter) operatorText(n *sitter.Node) string {
	children := tsutil.Children(n)
	if len(children) >= 2 {
		return tsutil.Text(children[1], c.source)
	}
	return ""
}

func (c *converter) convertCall(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	fnNode := tsutil.Field(n, "function")
	var callee *domain.Node
	name := ""
	if fnNode != nil {
		callee = c.convertExpr(fnNode, self)
		name = calleeName(callee)
	}
	var args []*domain.Node
	argsNode := tsutil.Field(n, "arguments")
	for _, a := range tsutil.Children(argsNode) {
		if a.Type() == "(" || a.Type() == ")" || a.Type() == "," {
			continue
		}
		args = append(args, c.convertExpr(a, self))
	}
	return &domain.Node{Type: domain.NodeCall, Location: loc, Name: name, Callee: callee, Args: args}
}

func calleeName(callee *domain.Node) string {
	if callee == nil {
		return ""
	}
	switch callee.Type {
	case domain.NodeIdentifier:
		return callee.Name
	case domain.NodeAttribute:
		return callee.Name
	default:
		return ""
	}
}

func (c *converter) convertMacro(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	macroName := tsutil.Text(tsutil.Field(n, "macro"), c.source)
	return &domain.Node{Type: domain.NodeMacroCall, Location: loc, Name: macroName}
}
