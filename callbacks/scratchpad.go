package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/functic/tools"
)

var TimeNowFn = time.Now

type runKey struct{}

// WithRunID returns a context that attributes the tool events to the run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunID returns the run ID of the context, or empty string.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runKey{}).(string)
	return v
}

type RunStats struct {
	RunID string

	Duration            time.Duration
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
	ContentBytes        uint64
}

// Scratchpad records the tool events of the runs,
// the run is identified by the context RunID.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording the run, and returns the context for the run.
func (l *Scratchpad) StartRun(ctx context.Context, runID string) context.Context {
	l.lock.Lock()
	defer l.lock.Unlock()

	r := &run{
		stats: RunStats{
			RunID: runID,
		},
		started: time.Now(),
	}
	l.runs[runID] = r
	r.print("*** Run Started ***")

	return WithRunID(ctx, runID)
}

// EndRun stops recording the run, and returns its stats and transcript.
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := run.snapshot()
	stats.Duration = time.Since(run.started)

	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d, Content Bytes: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
		stats.ContentBytes,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, stats.RunID)
	l.lock.Unlock()

	return &stats, run.bytes()
}

// ActiveRuns returns the number of the started runs.
func (l *Scratchpad) ActiveRuns() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.runs)
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	runID := RunID(ctx)
	if runID == "" {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[runID]
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, args string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Arguments:", args)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, args string, content string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	atomic.AddUint64(&run.stats.ContentBytes, uint64(len(content)))
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Content:", content)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, args string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, name string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print("*** Tool Not Found ***", name)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

func (r *run) snapshot() RunStats {
	return RunStats{
		RunID:               r.stats.RunID,
		ToolsCalls:          atomic.LoadUint32(&r.stats.ToolsCalls),
		ToolsCallsSucceeded: atomic.LoadUint32(&r.stats.ToolsCallsSucceeded),
		ToolsCallsFailed:    atomic.LoadUint32(&r.stats.ToolsCallsFailed),
		ToolNotFound:        atomic.LoadUint32(&r.stats.ToolNotFound),
		ContentBytes:        atomic.LoadUint64(&r.stats.ContentBytes),
	}
}

func (r *run) bytes() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return bytes.Clone(r.w.Bytes())
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
