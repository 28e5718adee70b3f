// Package pybackend implements the secondary Python domain.ParserBackend,
// grounded directly on the teacher's own internal/parser (ast_builder.go's
// tree-sitter-python node-type switch), generalized to emit domain.Node
// instead of the teacher's Python-only AST type.
package pybackend

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/parser/tsutil"
)

// Backend implements domain.ParserBackend for Python source files.
type Backend struct {
	parser *sitter.Parser
}

// New builds a Python Backend.
func New() *Backend {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Backend{parser: p}
}

func (b *Backend) Language() string     { return "python" }
func (b *Backend) Extensions() []string { return []string{".py", ".pyi"} }

func (b *Backend) ParseFile(path string, source []byte) (*domain.FileAst, *domain.AnalysisError) {
	tree, err := b.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, domain.NewParseError(path, "tree-sitter-python failed to parse", err)
	}
	root := tree.RootNode()

	c := &converter{path: path, source: source}
	ast := &domain.FileAst{FilePath: path, Language: "python", LineCount: tsutil.LineCount(source)}

	for _, child := range tsutil.Children(root) {
		c.convertTopLevel(child, "", ast)
	}
	return ast, nil
}

// RecognizeFrameworkPatterns flags Flask/Django-style route handlers that a
// generic glob rule over the function name can't see — the decorator text
// itself carries the signal.
func (b *Backend) RecognizeFrameworkPatterns(fn *domain.FunctionRecord) (string, bool) {
	for _, raw := range fn.RawAttrs {
		if strings.Contains(raw, ".route(") || strings.Contains(raw, "app.get") || strings.Contains(raw, "app.post") {
			return "web framework route decorator", true
		}
	}
	return "", false
}

type converter struct {
	path   string
	source []byte
}

func (c *converter) convertTopLevel(n *sitter.Node, parentType string, ast *domain.FileAst) {
	switch n.Type() {
	case "function_definition":
		if fn := c.convertFunction(n, parentType, nil); fn != nil {
			ast.Functions = append(ast.Functions, fn)
		}
	case "class_definition":
		c.convertClass(n, ast)
	case "decorated_definition":
		decorators := tsutil.ChildrenOfType(n, "decorator")
		for _, inner := range tsutil.Children(n) {
			switch inner.Type() {
			case "function_definition":
				if fn := c.convertFunction(inner, parentType, decorators); fn != nil {
					ast.Functions = append(ast.Functions, fn)
				}
			case "class_definition":
				c.convertClass(inner, ast)
			}
		}
	case "import_statement", "import_from_statement":
		ast.Imports = append(ast.Imports, c.convertImport(n))
	}
}

func (c *converter) convertClass(n *sitter.Node, ast *domain.FileAst) {
	name := tsutil.Text(tsutil.Field(n, "name"), c.source)
	loc := tsutil.Location(c.path, n)
	def := &domain.TypeDefinition{QualifiedName: name, Kind: domain.TypeKindClass, File: c.path, DefLine: loc.StartLine}

	body := tsutil.Field(n, "body")
	for _, child := range tsutil.Children(body) {
		switch child.Type() {
		case "function_definition":
			if fn := c.convertFunction(child, name, nil); fn != nil {
				ast.Functions = append(ast.Functions, fn)
				def.Methods = append(def.Methods, fn.ID)
			}
		case "decorated_definition":
			decorators := tsutil.ChildrenOfType(child, "decorator")
			for _, inner := range tsutil.Children(child) {
				if inner.Type() == "function_definition" {
					if fn := c.convertFunction(inner, name, decorators); fn != nil {
						ast.Functions = append(ast.Functions, fn)
						def.Methods = append(def.Methods, fn.ID)
					}
				}
			}
		}
	}
	ast.Types = append(ast.Types, def)
}

func (c *converter) convertImport(n *sitter.Node) domain.ImportDirective {
	loc := tsutil.Location(c.path, n)
	return domain.ImportDirective{Path: tsutil.Text(n, c.source), Line: loc.StartLine}
}

func (c *converter) convertFunction(n *sitter.Node, parentType string, decorators []*sitter.Node) *domain.FunctionRecord {
	nameNode := tsutil.Field(n, "name")
	if nameNode == nil {
		return nil
	}
	name := tsutil.Text(nameNode, c.source)
	qualified := domain.QualifiedFunctionName(parentType, name)
	loc := tsutil.Location(c.path, n)

	bodyTs := tsutil.Field(n, "body")
	body := c.convertBlock(bodyTs, name)
	bodySpan := loc
	if bodyTs != nil {
		bodySpan = tsutil.Location(c.path, bodyTs)
	}

	fn := &domain.FunctionRecord{
		ID:         domain.FunctionId{FilePath: c.path, QualifiedName: qualified, DefinitionLine: loc.StartLine},
		Span:       loc,
		BodySpan:   bodySpan,
		Signature:  domain.Signature{Params: c.params(n), ReturnKind: domain.ReturnKindUnknown},
		Visibility: c.visibility(name),
		ParentType: parentType,
		ModulePath: c.path,
		Language:   "python",
		Body:       body,
	}

	for _, dec := range decorators {
		text := tsutil.Text(dec, c.source)
		fn.RawAttrs = append(fn.RawAttrs, text)
		switch {
		case strings.Contains(text, "pytest.mark") || strings.HasPrefix(name, "test_"):
			fn.Attributes = append(fn.Attributes, domain.AttributeTest)
		case strings.Contains(text, "benchmark"):
			fn.Attributes = append(fn.Attributes, domain.AttributeBenchmark)
		}
	}
	if strings.HasPrefix(name, "test_") {
		fn.Attributes = append(fn.Attributes, domain.AttributeTest)
	}
	return fn
}

func (c *converter) visibility(name string) domain.Visibility {
	if strings.HasPrefix(name, "_") {
		return domain.VisibilityPrivate
	}
	return domain.VisibilityPublic
}

func (c *converter) params(n *sitter.Node) []domain.Parameter {
	var params []domain.Parameter
	list := tsutil.Field(n, "parameters")
	for _, p := range tsutil.Children(list) {
		switch p.Type() {
		case "identifier":
			params = append(params, domain.Parameter{Name: tsutil.Text(p, c.source)})
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			nameNode := tsutil.Field(p, "name")
			typeNode := tsutil.Field(p, "type")
			params = append(params, domain.Parameter{Name: tsutil.Text(nameNode, c.source), Type: tsutil.Text(typeNode, c.source)})
		}
	}
	return params
}

func (c *converter) convertBlock(n *sitter.Node, self string) *domain.Node {
	if n == nil {
		return nil
	}
	block := &domain.Node{Type: domain.NodeBlock, Location: tsutil.Location(c.path, n)}
	for _, stmt := range tsutil.Children(n) {
		if conv := c.convertStmt(stmt, self); conv != nil {
			block.Body = append(block.Body, conv)
		}
	}
	return block
}

func blockBody(b *domain.Node) []*domain.Node {
	if b == nil {
		return nil
	}
	return b.Body
}

func (c *converter) convertStmt(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	switch n.Type() {
	case "expression_statement":
		for _, child := range tsutil.Children(n) {
			return &domain.Node{Type: domain.NodeExprStmt, Location: loc, Children: []*domain.Node{c.convertExpr(child, self)}}
		}
		return nil
	case "return_statement":
		var val *domain.Node
		children := tsutil.Children(n)
		if len(children) > 1 {
			val = c.convertExpr(children[1], self)
		}
		return &domain.Node{Type: domain.NodeReturn, Location: loc, Children: nonNil(val)}
	case "if_statement":
		return c.convertIf(n, self)
	case "for_statement":
		return &domain.Node{Type: domain.NodeFor, Location: loc, Iter: c.convertExpr(tsutil.Field(n, "right"), self), Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "while_statement":
		return &domain.Node{Type: domain.NodeWhile, Location: loc, Test: c.convertExpr(tsutil.Field(n, "condition"), self), Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	case "try_statement":
		return c.convertTry(n, self)
	case "match_statement":
		return c.convertMatch(n, self)
	case "break_statement":
		return &domain.Node{Type: domain.NodeBreak, Location: loc}
	case "continue_statement":
		return &domain.Node{Type: domain.NodeContinue, Location: loc}
	case "raise_statement":
		return &domain.Node{Type: domain.NodeRaise, Location: loc}
	case "import_statement", "import_from_statement":
		return &domain.Node{Type: domain.NodeImport, Location: loc}
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

func (c *converter) convertIf(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	node := &domain.Node{
		Type:     domain.NodeIf,
		Location: loc,
		Test:     c.convertExpr(tsutil.Field(n, "condition"), self),
		Body:     blockBody(c.convertBlock(tsutil.Field(n, "consequence"), self)),
	}
	// Each elif/else hangs off the previous branch's Orelse, so the chain
	// nests the same way the Rust backend's else-if chain does.
	tail := node
	for _, alt := range tsutil.Children(n) {
		switch alt.Type() {
		case "elif_clause":
			elifNode := &domain.Node{
				Type:     domain.NodeElifClause,
				Location: tsutil.Location(c.path, alt),
				Test:     c.convertExpr(tsutil.Field(alt, "condition"), self),
				Body:     blockBody(c.convertBlock(tsutil.Field(alt, "consequence"), self)),
			}
			tail.Orelse = append(tail.Orelse, elifNode)
			tail = elifNode
		case "else_clause":
			tail.Orelse = append(tail.Orelse, &domain.Node{Type: domain.NodeElseClause, Location: tsutil.Location(c.path, alt), Body: blockBody(c.convertBlock(tsutil.Field(alt, "body"), self))})
		}
	}
	return node
}

func (c *converter) convertTry(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	node := &domain.Node{Type: domain.NodeTry, Location: loc, Body: blockBody(c.convertBlock(tsutil.Field(n, "body"), self))}
	for _, child := range tsutil.Children(n) {
		switch child.Type() {
		case "except_clause":
			node.Handlers = append(node.Handlers, &domain.Node{Type: domain.NodeCatch, Location: tsutil.Location(c.path, child), Body: c.exceptBody(child, self)})
		case "else_clause":
			node.Orelse = append(node.Orelse, &domain.Node{Type: domain.NodeElseClause, Location: tsutil.Location(c.path, child), Body: blockBody(c.convertBlock(tsutil.Field(child, "body"), self))})
		case "finally_clause":
			node.Children = append(node.Children, &domain.Node{Type: domain.NodeFinally, Location: tsutil.Location(c.path, child), Body: blockBody(c.convertBlock(tsutil.Field(child, "body"), self))})
		}
	}
	return node
}

func (c *converter) exceptBody(n *sitter.Node, self string) []*domain.Node {
	for _, child := range tsutil.Children(n) {
		if child.Type() == "block" {
			return blockBody(c.convertBlock(child, self))
		}
	}
	return nil
}

func (c *converter) convertMatch(n *sitter.Node, self string) *domain.Node {
	loc := tsutil.Location(c.path, n)
	node := &domain.Node{Type: domain.NodeMatch, Location: loc, Test: c.convertExpr(tsutil.Field(n, "subject"), self)}
	body := tsutil.Field(n, "body")
	for _, caseClause := range tsutil.ChildrenOfType(body, "case_clause") {
		armLoc := tsutil.Location(c.path, caseClause)
		arm := &domain.Node{Type: domain.NodeMatchArm, Location: armLoc, Body: blockBody(c.convertBlock(tsutil.Field(caseClause, "consequence"), self))}
		node.Children = append(node.Children, arm)
	}
	return node
}

func (c *converter) convertExpr(n *sitter.Node, self string) *domain.Node {
	if n == nil {
		return nil
	}
	loc := tsutil.Location(c.path, n)
	switch n.Type() {
	case "boolean_operator":
		op := tsutil.Text(tsutil.Field(n, "operator"), c.source)
		return &domain.Node{Type: domain.NodeLogicalOp, Location: loc, Op: op, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "binary_operator":
		op := tsutil.Text(tsutil.Field(n, "operator"), c.source)
		return &domain.Node{Type: domain.NodeBinOp, Location: loc, Op: op, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "unary_operator", "not_operator":
		return &domain.Node{Type: domain.NodeUnaryOp, Location: loc, Left: c.convertExpr(tsutil.Field(n, "argument"), self)}
	case "conditional_expression":
		return &domain.Node{Type: domain.NodeTernary, Location: loc, Test: c.convertExpr(tsutil.Field(n, "condition"), self)}
	case "assignment":
		return &domain.Node{Type: domain.NodeAssign, Location: loc, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "augmented_assignment":
		return &domain.Node{Type: domain.NodeAugAssign, Location: loc, Left: c.convertExpr(tsutil.Field(n, "left"), self), Right: c.convertExpr(tsutil.Field(n, "right"), self)}
	case "call":
		return c.convertCall(n, self)
	case "attribute":
		obj := c.convertExpr(tsutil.Field(n, "object"), self)
		attr := tsutil.Text(tsutil.Field(n, "attribute"), c.source)
		return &domain.Node{Type: domain.NodeAttribute, Location: loc, Name: attr, Left: obj}
	case "lambda":
		return &domain.Node{Type: domain.NodeClosure, Location: loc}
	case "await":
		children := tsutil.Children(n)
		var arg *domain.Node
		if len(children) > 1 {
			arg = c.convertExpr(children[1], self)
		}
		return &domain.Node{Type: domain.NodeAwait, Location: loc, Left: arg}
	case "identifier":
		return &domain.Node{Type: domain.NodeIdentifier, Location: loc, Name: tsutil.Text(n, c.source)}
	case "integer", "string", "true", "false", "none", "float":
		return &domain.Node{Type: domain.NodeLiteral, Location: loc, Value: tsutil.Text(n, c.source)}
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
	case domain.NodeIdentifier, domain.NodeAttribute:
		return callee.Name
	default:
		return ""
	}
}
