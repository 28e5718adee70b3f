package pybackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

func TestBackendLanguageAndExtensions(t *testing.T) {
	b := New()
	assert.Equal(t, "python", b.Language())
	assert.Contains(t, b.Extensions(), ".py")
}

func TestParseFileExtractsTopLevelFunction(t *testing.T) {
	src := []byte("def add(a, b):\n    return a + b\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, "add", ast.Functions[0].ID.QualifiedName)
	assert.Equal(t, domain.VisibilityPublic, ast.Functions[0].Visibility)
}

func TestParseFilePrivateFunctionByUnderscorePrefix(t *testing.T) {
	src := []byte("def _helper():\n    pass\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, domain.VisibilityPrivate, ast.Functions[0].Visibility)
}

func TestParseFileClassMethodsGetQualifiedNameAndParentType(t *testing.T) {
	src := []byte("class Widget:\n    def render(self):\n        return 1\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Types, 1)
	assert.Equal(t, "Widget", ast.Types[0].QualifiedName)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, "Widget::render", ast.Functions[0].ID.QualifiedName)
	assert.Equal(t, "Widget", ast.Functions[0].ParentType)
	assert.Len(t, ast.Types[0].Methods, 1)
}

func TestParseFileTestAttributeFromNamingConvention(t *testing.T) {
	src := []byte("def test_addition():\n    assert 1 + 1 == 2\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.True(t, ast.Functions[0].HasAttribute(domain.AttributeTest))
}

func TestParseFileDecoratedFunctionCarriesRawAttrs(t *testing.T) {
	src := []byte("@pytest.mark.skip\ndef flaky():\n    pass\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.NotEmpty(t, ast.Functions[0].RawAttrs)
	assert.True(t, ast.Functions[0].HasAttribute(domain.AttributeTest))
}

func TestParseFileIfElifElseBranches(t *testing.T) {
	src := []byte("def classify(x):\n    if x > 0:\n        return 1\n    elif x < 0:\n        return -1\n    else:\n        return 0\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	body := ast.Functions[0].Body
	require.NotNil(t, body)
	require.Len(t, body.Body, 1)
	ifNode := body.Body[0]
	assert.Equal(t, domain.NodeIf, ifNode.Type)
	require.Len(t, ifNode.Orelse, 1, "elif/else chain collapses to one Orelse entry per §ast shape")
}

func TestParseFileCallExpressionCapturesNameAndArgs(t *testing.T) {
	src := []byte("def wrapper():\n    do_thing(1, 2)\n")
	ast, err := New().ParseFile("m.py", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	stmts := ast.Functions[0].Body.Body
	require.Len(t, stmts, 1)
	call := stmts[0].Children[0]
	assert.Equal(t, domain.NodeCall, call.Type)
	assert.Equal(t, "do_thing", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestRecognizeFrameworkPatternsFlaskRoute(t *testing.T) {
	b := New()
	fn := &domain.FunctionRecord{RawAttrs: []string{"@app.route('/health')"}}
	reason, ok := b.RecognizeFrameworkPatterns(fn)
	assert.True(t, ok)
	assert.NotEmpty(t, reason)
}

func TestRecognizeFrameworkPatternsNoMatch(t *testing.T) {
	b := New()
	fn := &domain.FunctionRecord{RawAttrs: []string{"@staticmethod"}}
	_, ok := b.RecognizeFrameworkPatterns(fn)
	assert.False(t, ok)
}

func TestParseFileMalformedSourceStillReturnsAst(t *testing.T) {
	// tree-sitter is error-tolerant: malformed input produces an AST with
	// ERROR nodes rather than a parse failure, so ParseFile should not
	// report an *AnalysisError for syntactically broken source.
	src := []byte("def broken(:\n")
	ast, err := New().ParseFile("m.py", src)
	assert.Nil(t, err)
	assert.NotNil(t, ast)
}
