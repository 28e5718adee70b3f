package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/debtscan/debtscan/domain"
)

// supportedExtensions maps a file extension to whether the parser façade
// has a backend for it. Only Rust and Python are wired (§ DOMAIN STACK);
// anything else is skipped during discovery rather than failing the run.
var supportedExtensions = map[string]bool{
	".rs":  true,
	".py":  true,
	".pyi": true,
}

// FileReaderImpl implements domain.FileReader.
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service.
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// CollectFiles recursively finds all analyzable source files under paths.
func (f *FileReaderImpl) CollectFiles(paths []string, includePatterns, excludePatterns []string) ([]string, error) {
	if err := f.validatePatterns(includePatterns, "include"); err != nil {
		return nil, err
	}
	if err := f.validatePatterns(excludePatterns, "exclude"); err != nil {
		return nil, err
	}

	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewIoError(path, "path does not exist", err)
		}

		if info.IsDir() {
			dirFiles, err := f.collectFromDirectory(path, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
		} else if f.isSourceFile(path) && f.shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
	}

	return files, nil
}

// ReadFile reads the content of a file.
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewIoError(path, "failed to read file", err)
	}
	return content, nil
}

// isSourceFile checks if a file extension is handled by a parser backend.
func (f *FileReaderImpl) isSourceFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// collectFromDirectory collects source files from a directory tree.
func (f *FileReaderImpl) collectFromDirectory(dirPath string, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip the unreadable entry and continue processing other files
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") && path != dirPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() && f.shouldSkipDirectory(info.Name()) {
			return filepath.SkipDir
		}

		if !info.IsDir() && f.isSourceFile(path) {
			if f.shouldIncludeFile(path, includePatterns, excludePatterns) {
				files = append(files, path)
			}
		}

		return nil
	}

	if err := filepath.Walk(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// shouldIncludeFile checks if a file should be included based on patterns.
func (f *FileReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, path) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, path) {
			return true
		}
	}

	return false
}

// matchesPattern checks if a path matches a doublestar glob pattern,
// against both the full path and the bare filename.
func (f *FileReaderImpl) matchesPattern(pattern, path string) bool {
	if matched, err := doublestar.Match(pattern, filepath.ToSlash(path)); err == nil && matched {
		return true
	}
	if matched, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}
	return false
}

// validatePatterns checks for common pattern syntax issues and provides helpful error messages.
func (f *FileReaderImpl) validatePatterns(patterns []string, patternType string) error {
	for _, pattern := range patterns {
		if err := f.validatePattern(pattern); err != nil {
			return fmt.Errorf("invalid %s pattern '%s': %w", patternType, pattern, err)
		}
	}
	return nil
}

// validatePattern validates a single pattern for common issues.
func (f *FileReaderImpl) validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern not allowed")
	}
	if strings.Contains(pattern, "\\") {
		return fmt.Errorf("escaped characters not fully supported, avoid backslashes in patterns")
	}
	if strings.Contains(pattern, ".*") {
		return fmt.Errorf("looks like regex syntax, use glob syntax instead (e.g., '*.py' not '.*\\.py')")
	}
	if strings.HasSuffix(pattern, "$") || strings.HasPrefix(pattern, "^") {
		return fmt.Errorf("regex anchors (^ $) not supported, use glob syntax instead")
	}
	if _, err := doublestar.Match(pattern, "test"); err != nil {
		return fmt.Errorf("invalid glob syntax: %w", err)
	}
	return nil
}

// shouldSkipDirectory checks if a directory should be skipped entirely:
// VCS metadata, build artifacts, and package caches across both target
// ecosystems (Cargo and Python).
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	skipDirs := map[string]bool{
		"__pycache__": true, ".git": true, ".svn": true, ".hg": true, ".bzr": true,
		"node_modules": true, ".tox": true, ".pytest_cache": true, ".mypy_cache": true,
		"venv": true, "env": true, ".venv": true, ".env": true,
		"build": true, "dist": true, "target": true,
	}
	return skipDirs[strings.ToLower(dirName)]
}

// FileExists checks if a path exists and is a regular file.
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
