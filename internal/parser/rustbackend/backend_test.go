package rustbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
)

func TestBackendLanguageAndExtensions(t *testing.T) {
	b := New()
	assert.Equal(t, "rust", b.Language())
	assert.Equal(t, []string{".rs"}, b.Extensions())
}

func TestParseFileExtractsFreeFunction(t *testing.T) {
	src := []byte("fn add(a: i32, b: i32) -> i32 {\n    a + b\n}\n")
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, "add", ast.Functions[0].ID.QualifiedName)
	assert.Equal(t, domain.ReturnKindValue, ast.Functions[0].Signature.ReturnKind)
}

func TestParseFilePublicVisibility(t *testing.T) {
	src := []byte("pub fn exported() {}\n")
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, domain.VisibilityPublic, ast.Functions[0].Visibility)
}

func TestParseFilePrivateVisibilityByDefault(t *testing.T) {
	src := []byte("fn hidden() {}\n")
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.Equal(t, domain.VisibilityPrivate, ast.Functions[0].Visibility)
}

func TestParseFileStructFieldsAndImplMethods(t *testing.T) {
	src := []byte(`
struct Widget {
    name: String,
    count: i32,
}

impl Widget {
    fn render(&self) -> i32 {
        self.count
    }
}
`)
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Types, 1)
	assert.Equal(t, "Widget", ast.Types[0].QualifiedName)
	require.Len(t, ast.Types[0].Fields, 2)
	assert.Equal(t, "name", ast.Types[0].Fields[0].Name)

	require.Len(t, ast.Functions, 1)
	assert.Equal(t, "Widget::render", ast.Functions[0].ID.QualifiedName)
	assert.Equal(t, "Widget", ast.Functions[0].ParentType)
	require.Len(t, ast.Functions[0].Signature.Params, 1)
	assert.Equal(t, "self", ast.Functions[0].Signature.Params[0].Name)
}

func TestParseFileTraitDefinitionAndImplementation(t *testing.T) {
	src := []byte(`
trait Drawable {
    fn draw(&self);
}

impl Drawable for Widget {
    fn draw(&self) {}
}
`)
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)

	var traitDef *domain.TypeDefinition
	for _, ty := range ast.Types {
		if ty.Kind == domain.TypeKindTrait {
			traitDef = ty
		}
	}
	require.NotNil(t, traitDef)
	assert.Equal(t, "Drawable", traitDef.QualifiedName)

	require.Len(t, ast.Impls, 1)
	assert.Equal(t, "Widget", ast.Impls[0].TypeName)
	assert.Equal(t, "Drawable", ast.Impls[0].TraitName)

	var implMethod *domain.FunctionRecord
	for _, fn := range ast.Functions {
		if fn.ParentType == "Widget" {
			implMethod = fn
		}
	}
	require.NotNil(t, implMethod)
	assert.Equal(t, "Drawable", implMethod.ImplementedTrait)
}

func TestParseFileResultAndOptionReturnKinds(t *testing.T) {
	src := []byte(`
fn might_fail() -> Result<i32, String> {
    Ok(1)
}

fn maybe_value() -> Option<i32> {
    None
}
`)
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 2)
	byName := map[string]*domain.FunctionRecord{}
	for _, fn := range ast.Functions {
		byName[fn.ID.QualifiedName] = fn
	}
	assert.Equal(t, domain.ReturnKindResult, byName["might_fail"].Signature.ReturnKind)
	assert.Equal(t, domain.ReturnKindOption, byName["maybe_value"].Signature.ReturnKind)
}

func TestParseFileTestAttribute(t *testing.T) {
	src := []byte("#[test]\nfn it_works() {\n    assert!(true);\n}\n")
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	assert.True(t, ast.Functions[0].HasAttribute(domain.AttributeTest))
	assert.NotEmpty(t, ast.Functions[0].RawAttrs)
}

func TestParseFileMacroInvocationCaptured(t *testing.T) {
	src := []byte("fn noisy() {\n    println!(\"hi\");\n}\n")
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
	body := ast.Functions[0].Body
	require.NotNil(t, body)
	require.Len(t, body.Body, 1)
	assert.Equal(t, domain.NodeMacroCall, body.Body[0].Children[0].Type)
}

func TestParseFileIfElseIfChain(t *testing.T) {
	src := []byte(`
fn classify(x: i32) -> i32 {
    if x > 0 {
        1
    } else if x < 0 {
        -1
    } else {
        0
    }
}
`)
	ast, err := New().ParseFile("lib.rs", src)
	require.Nil(t, err)
	require.Len(t, ast.Functions, 1)
}

func TestRecognizeFrameworkPatternsAlwaysFalse(t *testing.T) {
	b := New()
	_, ok := b.RecognizeFrameworkPatterns(&domain.FunctionRecord{})
	assert.False(t, ok)
}
