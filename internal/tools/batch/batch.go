package batch

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultSize is the chunk size when the caller gives none.
const DefaultSize = 50

// maxInFlight bounds the concurrent calls of a chunk.
const maxInFlight = 10

// Result is the outcome for one ID.
type Result struct {
	ID  string
	Err error
}

// OK reports whether the call for the ID succeeded.
func (r Result) OK() bool { return r.Err == nil }

// ProcessBatch calls fn for every id, size IDs at a time, and returns one
// Result per id in input order. A size of zero or less uses DefaultSize.
func ProcessBatch(ctx context.Context, ids []string, size int, fn func(ctx context.Context, id string) error) []Result {
	if size <= 0 {
		size = DefaultSize
	}

	results := make([]Result, len(ids))
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		processChunk(ctx, ids[start:end], results[start:end], fn)
	}
	return results
}

func processChunk(ctx context.Context, ids []string, out []Result, fn func(context.Context, string) error) {
	var g errgroup.Group
	g.SetLimit(min(len(ids), maxInFlight))
	for i, id := range ids {
		g.Go(func() error {
			out[i] = Result{ID: id, Err: call(ctx, id, fn)}
			return nil
		})
	}
	_ = g.Wait()

	for i := range out {
		if out[i].OK() || ctx.Err() != nil {
			continue
		}
		out[i].Err = call(ctx, out[i].ID, fn)
	}
}

func call(ctx context.Context, id string, fn func(context.Context, string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, id)
}

// Succeeded counts the successful results.
func Succeeded(results []Result) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed results in order.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Wording holds the sentences of a batch summary.
type Wording struct {
	Heading   string
	Succeeded string
	Failed    string
}

var (
	ModifyWording = Wording{
		Heading:   "Batch label modification complete.",
		Succeeded: "Successfully processed",
		Failed:    "Failed to process",
	}
	DeleteWording = Wording{
		Heading:   "Batch delete operation complete.",
		Succeeded: "Successfully deleted",
		Failed:    "Failed to delete",
	}
)

// shortIDLen is how much of a failed message ID the summary shows.
const shortIDLen = 16

// FormatResults renders the summary text of a batch tool.
func FormatResults(w Wording, results []Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s: %d messages\n", w.Heading, w.Succeeded, Succeeded(results))

	failed := Failed(results)
	if len(failed) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %d messages\n\nFailed message IDs:\n", w.Failed, len(failed))
	lines := make([]string, len(failed))
	for i, r := range failed {
		id := r.ID
		if len(id) > shortIDLen {
			id = id[:shortIDLen]
		}
		lines[i] = fmt.Sprintf("- %s... (%v)", id, r.Err)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
