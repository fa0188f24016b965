package metricskey

import (
	"slices"
	"strings"
	"testing"

	"github.com/effective-security/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	require.Len(t, Metrics, 12)
	assert.True(t, slices.IsSortedFunc(Metrics, func(a, b *metrics.Describe) int {
		return strings.Compare(a.Name, b.Name)
	}), "keep Metrics sorted by name")

	seen := map[string]bool{}
	for _, m := range Metrics {
		assert.False(t, seen[m.Name], "duplicate metric: %s", m.Name)
		seen[m.Name] = true

		assert.True(t, strings.HasPrefix(m.Help, m.Name+" "), "help must start with the name: %s", m.Name)
		assert.NotEmpty(t, m.RequiredTags, m.Name)
		switch {
		case strings.HasPrefix(m.Name, "perf_"):
			assert.Equal(t, metrics.TypeSample, m.Type, m.Name)
		case strings.HasPrefix(m.Name, "stats_"):
			assert.Equal(t, metrics.TypeCounter, m.Type, m.Name)
		default:
			t.Errorf("unexpected prefix: %s", m.Name)
		}
	}

	tags := map[string][]*metrics.Describe{
		"tool": {
			&PerfToolCall, &StatsToolCallsSucceeded, &StatsToolCallsFailed,
			&StatsToolCallsNotFound, &StatsToolArgsRepaired, &StatsToolArgsInvalid,
		},
		"cache":  {&StatsCacheHits, &StatsCacheMisses},
		"method": {&PerfHTTPRequest, &StatsHTTPRequests},
		"store":  {&StatsFunctionsSynced},
		"source": {&PerfAssistantEnsure},
	}
	for tag, list := range tags {
		for _, m := range list {
			assert.Contains(t, m.RequiredTags, tag, m.Name)
		}
	}
}
