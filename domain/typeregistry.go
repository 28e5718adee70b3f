package domain

import "sort"

// TypeRegistry is the global, parse-time-built index of every user-defined
// type (§3). It exclusively owns TypeDefinition values; resolvers hold a
// shared read reference and never copy definitions out.
type TypeRegistry struct {
	types   map[string]*TypeDefinition // qualified name -> definition
	aliases map[string]string          // alias -> target qualified name
	exports map[string][]string        // module path -> exported names
}

// NewTypeRegistry allocates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make(map[string]*TypeDefinition),
		aliases: make(map[string]string),
		exports: make(map[string][]string),
	}
}

// Register inserts or overwrites a type definition.
func (r *TypeRegistry) Register(def *TypeDefinition) {
	r.types[def.QualifiedName] = def
}

// RegisterAlias records a type alias.
func (r *TypeRegistry) RegisterAlias(alias, target string) {
	r.aliases[alias] = target
}

// RegisterExports records a module's public name list.
func (r *TypeRegistry) RegisterExports(modulePath string, names []string) {
	r.exports[modulePath] = append(r.exports[modulePath], names...)
}

// Lookup resolves a type name, following at most one alias indirection.
func (r *TypeRegistry) Lookup(name string) (*TypeDefinition, bool) {
	if def, ok := r.types[name]; ok {
		return def, true
	}
	if target, ok := r.aliases[name]; ok {
		def, ok := r.types[target]
		return def, ok
	}
	return nil, false
}

// Field resolves field name on type typeName, returning its resolved type.
func (r *TypeRegistry) Field(typeName, fieldName string) (string, bool) {
	def, ok := r.Lookup(typeName)
	if !ok {
		return "", false
	}
	for _, f := range def.Fields {
		if f.Name == fieldName {
			return f.ResolvedType, true
		}
	}
	return "", false
}

// Implementations returns every type implementing traitName, used by the
// Type & Field Resolver to expand trait-method dispatch to concrete
// implementations (§4.3 step 4).
func (r *TypeRegistry) Implementations(traitName string) []*TypeDefinition {
	var out []*TypeDefinition
	for _, def := range r.types {
		for _, impl := range def.Implements {
			if impl.TraitName == traitName {
				out = append(out, def)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

// MethodsNamed returns every registered function whose bare name matches
// name across all types and free functions, for the name-based fallback
// in §4.3.
func (r *TypeRegistry) MethodsNamed(name string, allFunctions map[string]*FunctionRecord) []*FunctionRecord {
	var out []*FunctionRecord
	for _, fn := range allFunctions {
		bare := fn.ID.QualifiedName
		if idx := lastIndexSep(bare); idx >= 0 {
			bare = bare[idx+2:]
		}
		if bare == name {
			out = append(out, fn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

func lastIndexSep(s string) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == ':' && i+1 < len(s) && s[i+1] == ':' {
			return i
		}
	}
	return -1
}

// Types returns every registered definition sorted by qualified name.
func (r *TypeRegistry) Types() []*TypeDefinition {
	out := make([]*TypeDefinition, 0, len(r.types))
	for _, def := range r.types {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}
