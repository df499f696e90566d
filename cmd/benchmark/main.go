package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"search/config"
	"search/internal/adapter/analyzer"
	"search/internal/adapter/fs"
	"search/internal/adapter/memstore"
	"search/internal/usecase"
	"search/internal/workqueue"
)

func main() {
	dir := flag.String("dir", ".", "Directory of text files to index")
	query := flag.String("q", "", "Query to run against both indexes")
	threads := flag.Int("threads", config.DefaultThreads, "Worker count for the pooled run")
	exact := flag.Bool("exact", false, "Exact instead of prefix matching")
	topK := flag.Int("k", 10, "Number of results to print")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./docs -q \"query\" [-threads 8]")
		fmt.Println("\nCompares:")
		fmt.Println("  1. Single-threaded indexing against pooled indexing")
		fmt.Println("  2. Index equality between the two runs")
		fmt.Println("  3. Query latency and results on both indexes")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tokenizer := analyzer.NewTokenizer(cfg.Index.Stemming)
	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	loader := fs.NewLoader(tokenizer)

	fmt.Println("INDEXING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	serial := memstore.NewInvertedIndex()
	serialResult, err := usecase.NewIndexUseCase(serial, walker, loader, nil).Index(*dir, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing error: %v\n", err)
		os.Exit(1)
	}

	queue := workqueue.New(*threads)
	defer queue.Shutdown()
	pooled := memstore.NewConcurrentIndex()
	pooledResult, err := usecase.NewIndexUseCase(pooled, walker, loader, queue).Index(*dir, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Files: %d (failed %d)\n", serialResult.FilesIndexed, serialResult.FilesFailed)
	fmt.Printf("Words: %d   Locations: %d\n", serialResult.Words, serialResult.Locations)
	fmt.Printf("  Single-threaded: %v\n", serialResult.Duration.Round(time.Microsecond))
	fmt.Printf("  %d workers:       %v\n", queue.Workers(), pooledResult.Duration.Round(time.Microsecond))
	if pooledResult.Duration > 0 {
		fmt.Printf("  Speedup:         %.2fx\n", float64(serialResult.Duration)/float64(pooledResult.Duration))
	}

	same := reflect.DeepEqual(serial.Snapshot(), pooled.Snapshot()) &&
		reflect.DeepEqual(serial.LocationTotals(), pooled.LocationTotals())
	fmt.Printf("  Indexes equal:   %v\n\n", same)

	terms := usecase.CanonicalTerms(tokenizer.Tokenize(*query))
	fmt.Printf("Query: %q -> %v\n", *query, terms)
	fmt.Println(strings.Repeat("-", 70))

	start := time.Now()
	results := serial.Search(terms, *exact)
	serialLatency := time.Since(start)

	start = time.Now()
	pooledResults := pooled.Search(terms, *exact)
	pooledLatency := time.Since(start)

	fmt.Printf("Latency: %v (single) / %v (locked)\n", serialLatency, pooledLatency)
	fmt.Printf("Results equal: %v\n\n", reflect.DeepEqual(results, pooledResults))

	if len(results) > *topK {
		results = results[:*topK]
	}
	for i, r := range results {
		fmt.Printf("%d. [%.4f] %s (%d of %d)\n", i+1, r.Score(), r.Location, r.Count, r.Total)
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
	}
}
