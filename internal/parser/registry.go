// Package parser hosts the Parser Façade (§4.1): a registry dispatching a
// file to the domain.ParserBackend that owns its extension, keeping every
// caller ignorant of which grammar produced a given domain.FileAst.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/debtscan/debtscan/domain"
)

// Registry dispatches files to the backend registered for their extension.
type Registry struct {
	byExt map[string]domain.ParserBackend
}

// NewRegistry builds a Registry from a set of backends, indexing each by
// every extension it declares.
func NewRegistry(backends ...domain.ParserBackend) *Registry {
	r := &Registry{byExt: make(map[string]domain.ParserBackend)}
	for _, b := range backends {
		for _, ext := range b.Extensions() {
			r.byExt[strings.ToLower(ext)] = b
		}
	}
	return r
}

// BackendFor returns the backend registered for path's extension.
func (r *Registry) BackendFor(path string) (domain.ParserBackend, bool) {
	b, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return b, ok
}

// Backends returns every distinct registered backend.
func (r *Registry) Backends() []domain.ParserBackend {
	seen := map[domain.ParserBackend]bool{}
	var out []domain.ParserBackend
	for _, b := range r.byExt {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}
