package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	// StatsToolArgsRepaired is counter for malformed arguments that were repaired
	StatsToolArgsRepaired = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_args_repaired",
		Help:         "stats_tool_args_repaired provides total tool arguments repaired",
		RequiredTags: []string{"tool"},
	}

	StatsToolArgsInvalid = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_args_invalid",
		Help:         "stats_tool_args_invalid provides total tool arguments rejected",
		RequiredTags: []string{"tool"},
	}

	StatsCacheHits = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_cache_hits",
		Help:         "stats_cache_hits provides total cache hits",
		RequiredTags: []string{"cache"},
	}

	StatsCacheMisses = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_cache_misses",
		Help:         "stats_cache_misses provides total cache misses",
		RequiredTags: []string{"cache"},
	}

	StatsHTTPRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_http_requests",
		Help:         "stats_http_requests provides total HTTP requests served",
		RequiredTags: []string{"method", "status"},
	}

	StatsFunctionsSynced = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_functions_synced",
		Help:         "stats_functions_synced provides total function definitions persisted",
		RequiredTags: []string{"store"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfHTTPRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_http_request",
		Help:         "perf_http_request provides duration of HTTP request",
		RequiredTags: []string{"method"},
	}

	PerfAssistantEnsure = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_assistant_ensure",
		Help:         "perf_assistant_ensure provides duration of assistant lookup",
		RequiredTags: []string{"source"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAssistantEnsure,
	&PerfHTTPRequest,
	&PerfToolCall,
	&StatsCacheHits,
	&StatsCacheMisses,
	&StatsFunctionsSynced,
	&StatsHTTPRequests,
	&StatsToolArgsInvalid,
	&StatsToolArgsRepaired,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
