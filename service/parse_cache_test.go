package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtscan/debtscan/domain"
	"github.com/debtscan/debtscan/internal/parser"
	"github.com/debtscan/debtscan/internal/parser/pybackend"
)

// memFileReader implements domain.FileReader over an in-memory map, so
// these tests never touch the filesystem.
type memFileReader struct {
	files map[string][]byte
}

func (m *memFileReader) CollectFiles(paths []string, includePatterns, excludePatterns []string) ([]string, error) {
	return paths, nil
}

func (m *memFileReader) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

func newTestRegistry() *parser.Registry {
	return parser.NewRegistry(pybackend.New())
}

func TestNewParseCache(t *testing.T) {
	cache := NewParseCache()
	require.NotNil(t, cache)
	assert.Equal(t, 0, cache.Len())
}

func TestParseCachePutAndGet(t *testing.T) {
	cache := NewParseCache()

	result := &FileParseResult{Content: []byte("def f(): pass")}
	cache.Put("test.py", result)

	got, ok := cache.Get("test.py")
	require.True(t, ok)
	assert.Equal(t, "def f(): pass", string(got.Content))
}

func TestParseCacheGetMiss(t *testing.T) {
	cache := NewParseCache()

	_, ok := cache.Get("nonexistent.py")
	assert.False(t, ok)
}

func TestParseCacheSealPreventsWrite(t *testing.T) {
	cache := NewParseCache()
	cache.Put("a.py", &FileParseResult{Content: []byte("a")})
	cache.Seal()

	cache.Put("b.py", &FileParseResult{Content: []byte("b")})

	_, ok := cache.Get("b.py")
	assert.False(t, ok, "Put after Seal should be a no-op")
	assert.Equal(t, 1, cache.Len())
}

func TestParseCacheSealedConcurrentReads(t *testing.T) {
	cache := NewParseCache()
	for i := 0; i < 100; i++ {
		cache.Put(fmt.Sprintf("dir/file%d.py", i), &FileParseResult{Content: []byte("content")})
	}
	cache.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Get(fmt.Sprintf("dir/file%d.py", j))
			}
		}()
	}
	wg.Wait()
}

func TestParseCacheLen(t *testing.T) {
	cache := NewParseCache()
	cache.Put("a.py", &FileParseResult{})
	cache.Put("b.py", &FileParseResult{})
	cache.Put("c.py", &FileParseResult{})

	assert.Equal(t, 3, cache.Len())
}

func TestPopulateParseCache(t *testing.T) {
	reader := &memFileReader{files: map[string][]byte{
		"functions.py": []byte("def f(x):\n    return x + 1\n"),
	}}

	cache := PopulateParseCache(context.Background(), []string{"functions.py"}, reader, newTestRegistry(), 2)

	require.Equal(t, 1, cache.Len())
	result, ok := cache.Get("functions.py")
	require.True(t, ok)
	assert.Nil(t, result.ParseErr)
	require.NotNil(t, result.Ast)
	assert.NotEmpty(t, result.Content)
}

func TestPopulateParseCacheUnregisteredExtension(t *testing.T) {
	reader := &memFileReader{files: map[string][]byte{
		"notes.txt": []byte("just text"),
	}}

	cache := PopulateParseCache(context.Background(), []string{"notes.txt"}, reader, newTestRegistry(), 1)

	result, ok := cache.Get("notes.txt")
	require.True(t, ok)
	assert.Nil(t, result.ParseErr)
	assert.Nil(t, result.Ast, "a file with no matching backend should not produce an AST")
}

func TestPopulateParseCacheNonexistentFile(t *testing.T) {
	reader := &memFileReader{files: map[string][]byte{}}

	cache := PopulateParseCache(context.Background(), []string{"/nonexistent/file.py"}, reader, newTestRegistry(), 0)

	require.Equal(t, 1, cache.Len())
	result, ok := cache.Get("/nonexistent/file.py")
	require.True(t, ok)
	assert.NotNil(t, result.ParseErr)
}

func TestPopulateParseCacheMultipleFiles(t *testing.T) {
	reader := &memFileReader{files: map[string][]byte{
		"a.py": []byte("def a(): pass\n"),
		"b.py": []byte("def b(): pass\n"),
		"c.py": []byte("def c(): pass\n"),
	}}
	files := []string{"a.py", "b.py", "c.py"}

	cache := PopulateParseCache(context.Background(), files, reader, newTestRegistry(), 2)

	require.Equal(t, 3, cache.Len())
	for _, f := range files {
		result, ok := cache.Get(f)
		require.True(t, ok)
		assert.Nil(t, result.ParseErr)
		assert.NotNil(t, result.Ast)
	}
	assert.Len(t, cache.Asts(), 3)
}
