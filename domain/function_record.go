package domain

// Visibility is a language-neutral view of a declaration's exposure.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityCrate    Visibility = "crate" // pub(crate)-style intermediate visibility
	VisibilityUnknown  Visibility = "unknown"
)

// ReturnKind classifies a function's return shape without full type
// inference, enough for role classification and signature summaries.
type ReturnKind string

const (
	ReturnKindNone    ReturnKind = "none"
	ReturnKindValue   ReturnKind = "value"
	ReturnKindResult  ReturnKind = "result"  // Result<T,E> / error-returning
	ReturnKindOption  ReturnKind = "option"  // Option<T> / nullable
	ReturnKindUnknown ReturnKind = "unknown"
)

// Parameter is a single formal parameter.
type Parameter struct {
	Name string
	Type string // textual, unresolved type annotation; "" if absent
}

// Signature is a function's parameter list and return shape.
type Signature struct {
	Params     []Parameter
	ReturnKind ReturnKind
	ReturnType string
}

// Attribute is a language attribute/decorator/annotation preserved verbatim
// from source, e.g. "#[test]", "@pytest.fixture", "@Override".
type Attribute string

const (
	AttributeTest      Attribute = "test"
	AttributeBenchmark Attribute = "benchmark"
	AttributeExport    Attribute = "export"
)

// FunctionRecord owns everything the Parser Façade extracts about one
// function. It is mutated only by the Complexity stage (Metrics, Entropy)
// and the I/O Detector (IO); every later stage borrows it by reference.
type FunctionRecord struct {
	ID FunctionId

	Span         Location
	BodySpan     Location
	Signature    Signature
	Visibility   Visibility
	Attributes   []Attribute
	RawAttrs     []string // verbatim decorator/attribute text, preserved for output
	Body         *Node    // root of the function body subtree

	ParentType      string // receiver/enclosing type name, "" for free functions
	ImplementedTrait string // trait/interface being implemented, "" if none
	ModulePath      string // enclosing module/package path
	Language        string

	// Populated by later stages; nil until the corresponding stage runs.
	Metrics *ComplexityMetrics
	Entropy *EntropyAnalysis
	IO      *IoProfile
	Role    FunctionRole
}

// HasAttribute reports whether attr is present.
func (f *FunctionRecord) HasAttribute(attr Attribute) bool {
	for _, a := range f.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// IsMethod reports whether the function has a receiver/enclosing type.
func (f *FunctionRecord) IsMethod() bool {
	return f.ParentType != ""
}

// TypeKind distinguishes the kinds of user-defined types the resolver and
// structural analyzer reason about.
type TypeKind string

const (
	TypeKindStruct    TypeKind = "struct"
	TypeKindClass     TypeKind = "class"
	TypeKindEnum      TypeKind = "enum"
	TypeKindInterface TypeKind = "interface"
	TypeKindTrait     TypeKind = "trait"
	TypeKindAlias     TypeKind = "alias"
)

// FieldDefinition is a single named or tuple field of a type.
type FieldDefinition struct {
	Name         string // "" for tuple fields; Index identifies them instead
	Index        int
	ResolvedType string
}

// TraitImplementation records that a type implements a trait/interface,
// with the concrete methods it supplies (used to expand dispatch edges).
type TraitImplementation struct {
	TraitName string
	Methods   []string
}

// TypeDefinition is a fully-resolved entry in the TypeRegistry.
type TypeDefinition struct {
	QualifiedName string
	Kind          TypeKind
	File          string
	DefLine       int

	Fields  []FieldDefinition
	Methods []FunctionId // methods declared with this type as receiver

	Implements []TraitImplementation
	Generics   []string // generic parameter names, treated as opaque
}

// ImportDirective is a single import/use/require statement.
type ImportDirective struct {
	Path    string // imported module/package path as written
	Alias   string
	Names   []string // specific imported names, empty for whole-module import
	Line    int
}

// ImplBinding records a trait-impl or interface-implements relationship
// discovered at parse time, prior to TypeRegistry resolution.
type ImplBinding struct {
	TypeName  string
	TraitName string
	Line      int
}

// FileAst is everything the Parser Façade extracts from one source file.
type FileAst struct {
	FilePath  string
	Language  string
	Functions []*FunctionRecord
	Types     []*TypeDefinition
	Imports   []*ImportDirective
	Impls     []*ImplBinding

	// MacroCallSites records textual macro invocations and, where the
	// backend can expand them, the function names referenced inside the
	// expansion (consumed by Call Graph Builder phase 5).
	MacroCallSites []MacroCallSite

	LineCount int
}

// MacroCallSite is one macro/annotation-processor invocation site.
type MacroCallSite struct {
	Location      Location
	MacroName     string
	EnclosingFunc FunctionId
	ExpandedNames []string // function names textually present in the expansion, if known
}
