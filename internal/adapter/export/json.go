// Package export writes the index, location totals and query results as
// pretty-printed JSON.
package export

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"search/internal/adapter/memstore"
	"search/internal/domain"
)

// ResultDTO is the exported form of one ranked result.
type ResultDTO struct {
	Where string  `json:"where"`
	Count int     `json:"count"`
	Score float64 `json:"score"`
}

// WriteIndex writes word -> location -> positions.
func WriteIndex(path string, snapshot memstore.Snapshot) error {
	if snapshot == nil {
		snapshot = memstore.Snapshot{}
	}
	return writeJSON(path, snapshot)
}

// WriteLocations writes location -> total indexed words.
func WriteLocations(path string, totals map[string]int) error {
	if totals == nil {
		totals = map[string]int{}
	}
	return writeJSON(path, totals)
}

// WriteResults writes query -> ranked results.
func WriteResults(path string, results domain.QueryResults) error {
	return writeJSON(path, ResultDTOs(results))
}

// ResultDTOs converts results to their exported form, keeping rank order.
func ResultDTOs(results domain.QueryResults) map[string][]ResultDTO {
	out := make(map[string][]ResultDTO, len(results))
	for query, ranked := range results {
		dtos := make([]ResultDTO, 0, len(ranked))
		for _, r := range ranked {
			dtos = append(dtos, ResultDTO{
				Where: r.Location,
				Count: r.Count,
				Score: r.Score(),
			})
		}
		out[query] = dtos
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
