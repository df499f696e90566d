package usecase

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"search/internal/adapter/cache"
	"search/internal/adapter/fs"
	"search/internal/adapter/metrics"
	"search/internal/domain"
	"search/internal/port"
	"search/internal/workqueue"
)

// ErrPipelineDone is returned when queries are submitted after Finish.
var ErrPipelineDone = errors.New("query pipeline is finished")

// PipelineState is the lifecycle stage of a QueryUseCase.
type PipelineState int

const (
	StateIdle PipelineState = iota
	StateReading
	StateDraining
	StateDone
)

func (s PipelineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("PipelineState(%d)", int(s))
	}
}

// QueryUseCase turns query lines into ranked results, one entry per distinct
// set of normalized terms.
type QueryUseCase struct {
	index     port.Searcher
	tokenizer port.Tokenizer
	queue     *workqueue.WorkQueue
	results   *cache.ResultStore
	options

	mu    sync.Mutex
	state PipelineState
}

// NewQueryUseCase creates a query pipeline. With a nil queue every query is
// evaluated on the calling goroutine.
func NewQueryUseCase(
	index port.Searcher,
	tokenizer port.Tokenizer,
	queue *workqueue.WorkQueue,
	opts ...Option,
) *QueryUseCase {
	return &QueryUseCase{
		index:     index,
		tokenizer: tokenizer,
		queue:     queue,
		results:   cache.NewResultStore(),
		options:   buildOptions("query", opts),
	}
}

// CanonicalTerms returns the distinct terms in ascending order.
func CanonicalTerms(terms []string) []string {
	out := slices.Clone(terms)
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseLine normalizes line and evaluates it unless an identical query has
// already been seen. Blank lines are skipped.
func (u *QueryUseCase) ParseLine(line string, exact bool) error {
	if err := u.begin(); err != nil {
		return err
	}

	terms := CanonicalTerms(u.tokenizer.Tokenize(line))
	if len(terms) == 0 {
		u.metrics.QueryOutcome(metrics.QueryEmpty)
		return nil
	}
	key := strings.Join(terms, " ")
	if !u.results.Reserve(key) {
		u.metrics.QueryOutcome(metrics.QueryDuplicate)
		return nil
	}

	evaluate := func() error {
		filled := false
		defer func() {
			if !filled {
				u.results.Release(key)
				u.metrics.QueryOutcome(metrics.QueryFailed)
				u.logger.Error("query evaluation aborted", "query", key)
			}
		}()
		start := time.Now()
		results := u.index.Search(terms, exact)
		u.results.Put(key, results)
		filled = true
		u.metrics.QueryOutcome(metrics.QueryEvaluated)
		u.metrics.SearchDone(exact, time.Since(start), len(results))
		return nil
	}

	if u.queue == nil {
		return evaluate()
	}
	if err := u.queue.Submit(evaluate); err != nil {
		u.results.Release(key)
		return fmt.Errorf("failed to submit query %q: %w", key, err)
	}
	return nil
}

// Run parses every line read from r.
func (u *QueryUseCase) Run(r io.Reader, exact bool) error {
	var done error
	err := fs.EachLine(r, func(line string) {
		if done != nil {
			return
		}
		if err := u.ParseLine(line, exact); err != nil {
			if errors.Is(err, ErrPipelineDone) {
				done = err
				return
			}
			u.logger.Warn("failed to parse query", "error", err)
		}
	})
	if done != nil {
		return done
	}
	if err != nil {
		return fmt.Errorf("failed to read queries: %w", err)
	}
	return nil
}

// ReadQueries parses every line of the file at path. If the file cannot be
// opened the pipeline is finished with no results.
func (u *QueryUseCase) ReadQueries(path string, exact bool) error {
	f, err := os.Open(path)
	if err != nil {
		u.Finish()
		return fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	if err := u.Run(f, exact); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Finish waits for queued queries to complete. Further ParseLine and Run
// calls return ErrPipelineDone.
func (u *QueryUseCase) Finish() {
	u.mu.Lock()
	if u.state == StateDone {
		u.mu.Unlock()
		return
	}
	u.state = StateDraining
	u.mu.Unlock()

	if u.queue != nil {
		u.queue.Wait()
	}

	u.mu.Lock()
	u.state = StateDone
	u.mu.Unlock()

	u.logger.Debug("query pipeline finished", "queries", u.results.Len())
}

// Results returns a copy of every completed query's results.
func (u *QueryUseCase) Results() domain.QueryResults {
	return u.results.Snapshot()
}

// State returns the current lifecycle stage.
func (u *QueryUseCase) State() PipelineState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *QueryUseCase) begin() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch u.state {
	case StateDraining, StateDone:
		return ErrPipelineDone
	case StateIdle:
		u.state = StateReading
	}
	return nil
}
