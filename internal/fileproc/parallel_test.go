package fileproc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIndexed_PreservesOrder(t *testing.T) {
	files := make([]string, 100)
	for i := range files {
		files[i] = fmt.Sprintf("file%d.js", i)
	}

	results, errs := MapIndexed(context.Background(), files, 8, func(_ context.Context, path string) (string, error) {
		return "seen:" + path, nil
	}, nil)

	assert.Nil(t, errs)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, "seen:"+files[i], r)
	}
}

func TestMapIndexed_Errors(t *testing.T) {
	files := []string{"a.js", "b.js", "c.js"}

	results, errs := MapIndexed(context.Background(), files, 0, func(_ context.Context, path string) (int, error) {
		if path == "b.js" {
			return 99, errors.New("unreadable")
		}
		return len(path), nil
	}, nil)

	require.NotNil(t, errs)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, 1, errs.Len())
	assert.Equal(t, "b.js: unreadable", errs.Error())
	assert.Equal(t, []int{4, 0, 4}, results, "failed slot keeps the zero value")
}

func TestMapIndexed_Empty(t *testing.T) {
	results, errs := MapIndexed(context.Background(), nil, 4, func(context.Context, string) (int, error) {
		return 1, nil
	}, nil)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Nil(t, errs)
}

func TestMapIndexed_Progress(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var ticks atomic.Int32

	_, _ = MapIndexed(context.Background(), files, 2, func(_ context.Context, path string) (string, error) {
		if path == "c" {
			return "", errors.New("boom")
		}
		return path, nil
	}, func() { ticks.Add(1) })

	assert.Equal(t, int32(len(files)), ticks.Load(), "progress ticks for failures too")
}

func TestMapIndexed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := MapIndexed(ctx, []string{"a", "b"}, 1, func(context.Context, string) (int, error) {
		calls.Add(1)
		return 1, nil
	}, nil)

	assert.Len(t, results, 2)
	require.NotNil(t, errs)
	assert.Equal(t, 2, errs.Len())
	assert.Zero(t, calls.Load())
	assert.ErrorIs(t, errs.Errors[0].Err, context.Canceled)
}

func TestProcessingErrors(t *testing.T) {
	var nilErrs *ProcessingErrors
	assert.False(t, nilErrs.HasErrors())
	assert.Zero(t, nilErrs.Len())

	errs := &ProcessingErrors{}
	assert.Equal(t, "no errors", errs.Error())

	errs.Add("a.js", errors.New("first"))
	errs.Add("b.js", errors.New("second"))
	assert.Equal(t, "2 files failed to process (first: a.js: first)", errs.Error())
	assert.Nil(t, errs.Unwrap())
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), DefaultWorkerMultiplier)
}
