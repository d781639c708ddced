package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("id%d", i)
	}
	return out
}

func TestProcessBatch(t *testing.T) {
	var calls atomic.Int32
	fn := func(_ context.Context, id string) error {
		calls.Add(1)
		if id == "id2" {
			return errors.New("failed to process id2")
		}
		return nil
	}

	results := ProcessBatch(context.Background(), ids(5), 2, fn)

	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("id%d", i), r.ID)
	}
	assert.False(t, results[2].OK())
	assert.EqualError(t, results[2].Err, "failed to process id2")
	assert.Equal(t, 4, Succeeded(results))
	// five first attempts and one retry
	assert.Equal(t, int32(6), calls.Load())
}

func TestProcessBatch_RetrySucceeds(t *testing.T) {
	var mu sync.Mutex
	attempts := map[string]int{}
	fn := func(_ context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[id]++
		if id == "flaky" && attempts[id] == 1 {
			return errors.New("rate limited")
		}
		return nil
	}

	results := ProcessBatch(context.Background(), []string{"a", "flaky", "b"}, 0, fn)

	assert.Equal(t, 3, Succeeded(results))
	assert.Empty(t, Failed(results))
	assert.Equal(t, 2, attempts["flaky"])
	assert.Equal(t, 1, attempts["a"])
}

func TestProcessBatch_ChunksRunInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	fn := func(_ context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, id)
		return nil
	}

	ProcessBatch(context.Background(), ids(4), 2, fn)

	require.Len(t, seen, 4)
	assert.ElementsMatch(t, []string{"id0", "id1"}, seen[:2])
	assert.ElementsMatch(t, []string{"id2", "id3"}, seen[2:])
}

func TestProcessBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := ProcessBatch(ctx, ids(3), 2, func(context.Context, string) error {
		called = true
		return nil
	})

	assert.False(t, called)
	require.Len(t, Failed(results), 3)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestProcessBatch_Empty(t *testing.T) {
	results := ProcessBatch(context.Background(), nil, 10, func(context.Context, string) error { return nil })
	assert.Empty(t, results)
}

func TestFormatResults(t *testing.T) {
	t.Run("all succeeded", func(t *testing.T) {
		results := []Result{{ID: "a"}, {ID: "b"}}
		assert.Equal(t, "Batch delete operation complete.\nSuccessfully deleted: 2 messages\n",
			FormatResults(DeleteWording, results))
	})

	t.Run("with failures", func(t *testing.T) {
		results := []Result{
			{ID: "a"},
			{ID: "18c2f1a9b7e4d3c2a1f0", Err: errors.New("not found")},
			{ID: "short", Err: errors.New("forbidden")},
		}
		want := "Batch label modification complete.\n" +
			"Successfully processed: 1 messages\n" +
			"Failed to process: 2 messages\n\n" +
			"Failed message IDs:\n" +
			"- 18c2f1a9b7e4d3c2... (not found)\n" +
			"- short... (forbidden)"
		assert.Equal(t, want, FormatResults(ModifyWording, results))
	})
}
