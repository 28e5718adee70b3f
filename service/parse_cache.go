package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/parser"
)

// FileParseResult holds the cached parse result for a single file.
type FileParseResult struct {
	Content     []byte
	ContentHash uint64
	Ast         *domain.FileAst
	ParseErr    *domain.AnalysisError
}

// ParseCache stores pre-parsed results for sharing across pipeline stages.
// After Seal() is called the cache is read-only and safe for concurrent
// access without locks.
type ParseCache struct {
	results map[string]*FileParseResult
	sealed  bool
}

// NewParseCache creates a new empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{results: make(map[string]*FileParseResult)}
}

// Put stores a parse result. Must be called before Seal().
func (c *ParseCache) Put(filePath string, result *FileParseResult) {
	if c.sealed {
		return
	}
	c.results[filePath] = result
}

// Seal marks the cache as read-only.
func (c *ParseCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached parse result.
func (c *ParseCache) Get(filePath string) (*FileParseResult, bool) {
	r, ok := c.results[filePath]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *ParseCache) Len() int {
	return len(c.results)
}

// Asts returns every successfully parsed FileAst, in no particular order.
func (c *ParseCache) Asts() []*domain.FileAst {
	out := make([]*domain.FileAst, 0, len(c.results))
	for _, r := range c.results {
		if r.Ast != nil {
			out = append(out, r.Ast)
		}
	}
	return out
}

// PopulateParseCache reads and parses every file in parallel using the
// registry's backend dispatch (§4.1 Parser Façade), then seals the result.
// Parse failures are recorded per-file rather than aborting the batch, per
// the stage-local non-fatal policy for ErrorKindParse (§7).
//
// Files whose contents hash identically to an already-parsed file (common
// with generated code, vendored copies, or boilerplate stubs) reuse that
// file's AST and parse error instead of invoking the backend again, keyed
// by an xxhash of the raw bytes.
func PopulateParseCache(ctx context.Context, files []string, reader domain.FileReader, registry *parser.Registry, jobs int) *ParseCache {
	concurrency := jobs
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	cache := NewParseCache()

	type indexedResult struct {
		path   string
		result *FileParseResult
	}
	results := make([]indexedResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	var byHashMu sync.Mutex
	byHash := make(map[uint64]*FileParseResult)

	for i, filePath := range files {
		wg.Add(1)
		go func(idx int, fp string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			r := &FileParseResult{}

			content, err := reader.ReadFile(fp)
			if err != nil {
				r.ParseErr = domain.NewIoError(fp, "failed to read file", err)
				results[idx] = indexedResult{path: fp, result: r}
				return
			}
			r.Content = content
			r.ContentHash = xxhash.Sum64(content)

			backend, ok := registry.BackendFor(fp)
			if !ok {
				results[idx] = indexedResult{path: fp, result: r}
				return
			}

			byHashMu.Lock()
			cached, hit := byHash[r.ContentHash]
			byHashMu.Unlock()
			if hit {
				r.ParseErr = cached.ParseErr
				if cached.Ast != nil {
					r.Ast = rebindFilePath(cached.Ast, fp)
				}
				results[idx] = indexedResult{path: fp, result: r}
				return
			}

			ast, parseErr := backend.ParseFile(fp, content)
			if parseErr != nil {
				r.ParseErr = parseErr
			}
			r.Ast = ast

			byHashMu.Lock()
			byHash[r.ContentHash] = r
			byHashMu.Unlock()

			results[idx] = indexedResult{path: fp, result: r}
		}(i, filePath)
	}

	wg.Wait()

	for _, ir := range results {
		if ir.result != nil {
			cache.Put(ir.path, ir.result)
		}
	}
	cache.Seal()

	return cache
}

// rebindFilePath clones a FileAst reused from content-hash dedup so every
// embedded FunctionId and type location carries the new file's path instead
// of the originally-parsed duplicate's, keeping per-file identity correct
// even though the parse work itself was skipped.
func rebindFilePath(src *domain.FileAst, newPath string) *domain.FileAst {
	out := *src
	out.FilePath = newPath

	out.Functions = make([]*domain.FunctionRecord, len(src.Functions))
	for i, fn := range src.Functions {
		clone := *fn
		clone.ID.FilePath = newPath
		out.Functions[i] = &clone
	}

	out.Types = make([]*domain.TypeDefinition, len(src.Types))
	for i, t := range src.Types {
		clone := *t
		clone.File = newPath
		clone.Methods = make([]domain.FunctionId, len(t.Methods))
		for j, m := range t.Methods {
			m.FilePath = newPath
			clone.Methods[j] = m
		}
		out.Types[i] = &clone
	}

	if len(src.MacroCallSites) > 0 {
		out.MacroCallSites = make([]domain.MacroCallSite, len(src.MacroCallSites))
		for i, m := range src.MacroCallSites {
			m.EnclosingFunc.FilePath = newPath
			out.MacroCallSites[i] = m
		}
	}

	return &out
}
