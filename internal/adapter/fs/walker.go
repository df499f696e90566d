package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"search/internal/port"
)

// DefaultIncludes matches plain text documents.
var DefaultIncludes = []string{"**/*.txt", "**/*.text"}

type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

type FileInfo = port.FileInfo

// Walk returns every matching file under root in lexical order. root may
// also name a single file, which is returned if it matches. Returned paths
// keep the form of root, so a relative root yields relative paths.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	var files []FileInfo

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if w.shouldInclude(filepath.Base(root)) && !w.shouldExclude(filepath.Base(root)) {
			files = append(files, newFileInfo(root, info))
		}
		return files, nil
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, newFileInfo(path, info))
		}

		return nil
	})

	return files, err
}

func newFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		ModTime: info.ModTime().Unix(),
		Size:    info.Size(),
	}
}

// Extensions are matched case-insensitively, so patterns are expected in
// lowercase.
func (w *Walker) shouldInclude(path string) bool {
	path = strings.ToLower(path)
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	path = strings.ToLower(path)
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

var (
	_ port.FileWalker     = (*Walker)(nil)
	_ port.DocumentLoader = (*Loader)(nil)
)
