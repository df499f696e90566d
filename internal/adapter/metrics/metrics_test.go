package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums a counter family, optionally restricted to one outcome label.
func counterValue(t *testing.T, m *Metrics, name, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if outcome != "" {
				matched := false
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == "outcome" && lp.GetValue() == outcome {
						matched = true
					}
				}
				if !matched {
					continue
				}
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.TaskSubmitted()
	m.TaskSubmitted()
	m.TaskDone(TaskCompleted, time.Millisecond)
	m.TaskDone(TaskFailed, time.Millisecond)
	m.DocumentIndexed()
	m.DocumentFailed()
	m.QueryOutcome(QueryDuplicate)

	assert.Equal(t, 2.0, counterValue(t, m, "search_worker_tasks_total", TaskSubmitted))
	assert.Equal(t, 1.0, counterValue(t, m, "search_worker_tasks_total", TaskCompleted))
	assert.Equal(t, 1.0, counterValue(t, m, "search_worker_tasks_total", TaskFailed))
	assert.Equal(t, 1.0, counterValue(t, m, "search_documents_indexed_total", ""))
	assert.Equal(t, 1.0, counterValue(t, m, "search_document_failures_total", ""))
	assert.Equal(t, 1.0, counterValue(t, m, "search_queries_total", QueryDuplicate))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TaskSubmitted()
		m.TaskDone(TaskPanicked, time.Second)
		m.DocumentIndexed()
		m.DocumentFailed()
		m.QueryOutcome(QueryEmpty)
		m.SearchDone(true, time.Millisecond, 3)
		m.IndexSize(1, 1)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.SearchDone(false, 2*time.Millisecond, 4)
	m.IndexSize(10, 2)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "search_index_words 10"))
	assert.True(t, strings.Contains(text, `search_latency_seconds_count{mode="prefix"} 1`))
}
