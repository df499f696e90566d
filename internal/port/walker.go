package port

import "search/internal/domain"

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// DocumentLoader reads one file into a document of normalized terms.
type DocumentLoader interface {
	LoadDocument(path string) (domain.Document, error)
}
