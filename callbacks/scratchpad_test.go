package callbacks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct{ name string }

func (t *fakeTool) Name() string                                         { return t.name }
func (t *fakeTool) Description() string                                  { return "desc" }
func (t *fakeTool) Parameters() map[string]any                           { return nil }
func (t *fakeTool) ErrorContent() string                                 { return tools.DefaultErrorContent }
func (t *fakeTool) Definition() tools.FunctionDefinition                 { return tools.FunctionDefinition{Name: t.name} }
func (t *fakeTool) Call(ctx context.Context, args string) (string, error) { return "", nil }

func TestScratchpad_StartRun_EndRun(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx := sp.StartRun(context.Background(), "run1")
	assert.Equal(t, "run1", RunID(ctx))
	assert.Equal(t, 1, sp.ActiveRuns())

	r := sp.runs["run1"]
	require.NotNil(t, r)
	r.stats.ToolsCalls = 3
	r.stats.ToolsCallsFailed = 2
	r.stats.ToolNotFound = 1

	stats, buf := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, "run1", stats.RunID)
	assert.Contains(t, string(buf), "Run Started")
	assert.Contains(t, string(buf), "Run Ended")
	assert.Contains(t, string(buf), "Tool calls: 3, Failed: 2, Not Found: 1")
	_, ok := sp.runs["run1"]
	assert.False(t, ok)
	assert.Equal(t, 0, sp.ActiveRuns())

	// already ended
	s2, _ := sp.EndRun(ctx)
	assert.Nil(t, s2)
}

func TestScratchpad_getRun_nil(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeDefault)
	assert.Nil(t, sp.getRun(context.Background()))
	assert.Nil(t, sp.getRun(WithRunID(context.Background(), "unknown")))
}

func TestScratchpad_OnCallbacks(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx := sp.StartRun(context.Background(), "run2")
	tool := &fakeTool{name: "T1"}

	sp.OnToolStart(ctx, tool, "targs")
	sp.OnToolEnd(ctx, tool, "targs", "tcontent")
	sp.OnToolStart(ctx, tool, "targs")
	sp.OnToolError(ctx, tool, "targs", errors.New("terr"))
	sp.OnToolNotFound(ctx, "T2")

	stats, output := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, uint32(2), stats.ToolsCalls)
	assert.Equal(t, uint32(1), stats.ToolsCallsSucceeded)
	assert.Equal(t, uint32(1), stats.ToolsCallsFailed)
	assert.Equal(t, uint32(1), stats.ToolNotFound)
	assert.Equal(t, uint64(len("tcontent")), stats.ContentBytes)

	out := string(output)
	assert.Contains(t, out, "T1 *** Tool Start ***")
	assert.Contains(t, out, "T1 Arguments: targs")
	assert.Contains(t, out, "T1 Content: tcontent")
	assert.Contains(t, out, "T1 *** Tool End ***")
	assert.Contains(t, out, "T1 *** Tool Error *** terr")
	assert.Contains(t, out, "*** Tool Not Found *** T2")

	// no run
	sp.OnToolStart(ctx, tool, "targs")
	sp.OnToolEnd(ctx, tool, "targs", "tcontent")
	sp.OnToolError(ctx, tool, "targs", errors.New("terr2"))
	sp.OnToolNotFound(ctx, "T3")
}

func Test_run_print_format(t *testing.T) {
	r := &run{stats: RunStats{RunID: "run3"}}
	oldTimeFn := TimeNowFn
	TimeNowFn = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { TimeNowFn = oldTimeFn }()

	r.print("hello", "again")
	lines := strings.Split(r.w.String(), "\n")
	require.NotEmpty(t, lines[0])
	assert.Equal(t, "2024-01-01 12:00:00 run3 hello again", lines[0])
}
