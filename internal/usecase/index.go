package usecase

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"search/internal/adapter/memstore"
	"search/internal/port"
	"search/internal/workqueue"
)

// ProgressFunc is called after each file is processed.
type ProgressFunc func(done, total int)

// IndexUseCase builds the inverted index from a directory of text files.
type IndexUseCase struct {
	index  port.DocumentIndexer
	walker port.FileWalker
	loader port.DocumentLoader
	queue  *workqueue.WorkQueue
	options
}

// NewIndexUseCase creates an index use case. With a nil queue files are
// indexed one after another on the calling goroutine; otherwise index must
// be a *memstore.ConcurrentIndex.
func NewIndexUseCase(
	index port.DocumentIndexer,
	walker port.FileWalker,
	loader port.DocumentLoader,
	queue *workqueue.WorkQueue,
	opts ...Option,
) *IndexUseCase {
	return &IndexUseCase{
		index:   index,
		walker:  walker,
		loader:  loader,
		queue:   queue,
		options: buildOptions("index", opts),
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed int
	FilesFailed  int
	Words        int
	Locations    int
	Duration     time.Duration
	Errors       []string
}

// Index indexes every matching file under root.
func (u *IndexUseCase) Index(root string, progress ProgressFunc) (*IndexResult, error) {
	start := time.Now()

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	u.logger.Debug("walked corpus", "root", root, "files", len(files))

	result := &IndexResult{}
	if u.queue == nil {
		u.indexSerial(files, result, progress)
	} else {
		if err := u.indexPooled(files, result, progress); err != nil {
			return nil, err
		}
	}

	slices.Sort(result.Errors)
	result.Words = u.index.Size()
	result.Locations = len(u.index.LocationTotals())
	result.Duration = time.Since(start)
	u.metrics.IndexSize(result.Words, result.Locations)

	u.logger.Info("indexed corpus",
		"files", result.FilesIndexed,
		"failed", result.FilesFailed,
		"words", result.Words,
		"duration", result.Duration,
	)
	return result, nil
}

func (u *IndexUseCase) indexSerial(files []port.FileInfo, result *IndexResult, progress ProgressFunc) {
	for i, file := range files {
		doc, err := u.loader.LoadDocument(file.Path)
		if err == nil {
			u.index.AddDocument(doc)
		} else {
			u.logger.Warn("failed to index file", "path", file.Path, "error", err)
		}
		u.record(result, file.Path, err)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
}

// indexPooled runs one task per file. Each task builds a private index and
// merges it into the shared one.
func (u *IndexUseCase) indexPooled(files []port.FileInfo, result *IndexResult, progress ProgressFunc) error {
	shared, ok := u.index.(*memstore.ConcurrentIndex)
	if !ok {
		return errors.New("pooled indexing requires a concurrent index")
	}

	var mu sync.Mutex
	done := 0
	finish := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		u.record(result, path, err)
		done++
		if progress != nil {
			progress(done, len(files))
		}
	}

	for _, file := range files {
		err := u.queue.Submit(func() error {
			doc, err := u.loader.LoadDocument(file.Path)
			if err != nil {
				finish(file.Path, err)
				return fmt.Errorf("failed to index %s: %w", file.Path, err)
			}
			private := memstore.NewInvertedIndex()
			private.AddDocument(doc)
			shared.Merge(private)
			finish(file.Path, nil)
			return nil
		})
		if err != nil {
			u.logger.Warn("failed to submit file", "path", file.Path, "error", err)
			finish(file.Path, err)
		}
	}

	u.queue.Wait()
	return nil
}

func (u *IndexUseCase) record(result *IndexResult, path string, err error) {
	if err != nil {
		result.FilesFailed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		u.metrics.DocumentFailed()
		return
	}
	result.FilesIndexed++
	u.metrics.DocumentIndexed()
}
