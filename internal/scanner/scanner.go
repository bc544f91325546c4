package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frherrer/fdcompat/internal/domain"
)

// Scanner turns configured input paths into the list of test sources to read.
type Scanner interface {
	Resolve(paths []string, patterns []string, excludes []string) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir for directories.
type FileScanner struct {
	Recursive bool
}

// NewScanner creates a new FileScanner.
func NewScanner(recursive bool) *FileScanner {
	return &FileScanner{Recursive: recursive}
}

// Resolve returns every input source. A path naming a file is taken as-is,
// even if no pattern matches it; a directory contributes the files below it
// that match a pattern and no exclude. Duplicates are removed and directory
// results are sorted so extraction order is stable.
func (s *FileScanner) Resolve(paths []string, patterns []string, excludes []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("scan", domain.ReadFailure, p, 0,
				"input path does not exist",
				"set input.paths in fdcompat.yaml or pass --fd-tests", err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		files, err := s.Scan(p, patterns, excludes)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// Scan walks rootDir and returns sorted file paths matching any of the given
// glob patterns while excluding paths that match any exclude pattern.
func (s *FileScanner) Scan(rootDir string, patterns []string, excludes []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			relPath = path
		}

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if !s.Recursive || excluded(relPath, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded(relPath, excludes) {
			return nil
		}
		for _, pattern := range patterns {
			if matchGlob(relPath, pattern) {
				files = append(files, path)
				return nil
			}
		}
		return nil
	})

	if err != nil {
		return nil, domain.NewError("scan", domain.ReadFailure, rootDir, 0, "failed to scan directory", err)
	}

	sort.Strings(files)
	return files, nil
}

func excluded(relPath string, excludes []string) bool {
	for _, exc := range excludes {
		if matchGlob(relPath, exc) {
			return true
		}
	}
	return false
}

// matchGlob matches a path against a glob pattern, supporting ** for
// recursive matching. Patterns without a separator also match the base name.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	if prefix, suffix, ok := strings.Cut(pattern, "**"); ok {
		prefix = strings.TrimSuffix(prefix, "/")
		suffix = strings.TrimPrefix(suffix, "/")

		if prefix != "" {
			if path != prefix && !strings.HasPrefix(path, prefix+"/") {
				return false
			}
			path = strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
		}
		if suffix == "" {
			return true
		}

		parts := strings.Split(path, "/")
		for i := range parts {
			if matched, _ := filepath.Match(suffix, strings.Join(parts[i:], "/")); matched {
				return true
			}
		}
		return false
	}

	if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}
