package systems

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobCallbacksRunOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	var started atomic.Int32
	completed := []interface{}{}
	failed := []error{}
	boom := errors.New("boom")

	require.NoError(t, js.Submit(metadata.JobTask{
		JobType:     metadata.JOB_TYPE_RESOURCE_LOAD,
		InputParams: 21,
		OnStart: func(params interface{}) (interface{}, error) {
			started.Add(1)
			return params.(int) * 2, nil
		},
		OnComplete: func(result interface{}) { completed = append(completed, result) },
	}))
	require.NoError(t, js.Submit(metadata.JobTask{
		OnStart: func(interface{}) (interface{}, error) {
			started.Add(1)
			return nil, boom
		},
		OnComplete: func(interface{}) { t.Error("failed job completed") },
		OnFailure:  func(err error) { failed = append(failed, err) },
	}))

	// workers finish without delivering anything until Update
	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(2), started.Load())
	assert.Empty(t, completed)
	assert.Empty(t, failed)

	js.Update()
	assert.Equal(t, []interface{}{42}, completed)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], boom)
}

func TestJobPanicBecomesFailure(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	var failure error
	require.NoError(t, js.Submit(metadata.JobTask{
		OnStart:   func(interface{}) (interface{}, error) { panic("bad job") },
		OnFailure: func(err error) { failure = err },
	}))
	require.NoError(t, js.Shutdown())

	js.Update()
	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "bad job")
}

func TestJobSystemNonBlockingSubmit(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, js.AddWorkNonBlocking(metadata.JobTask{
		OnStart: func(interface{}) (interface{}, error) {
			close(done)
			return "ok", nil
		},
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.Submit(metadata.JobTask{}), ErrJobSystemClosed)
	assert.ErrorIs(t, js.AddWorkNonBlocking(metadata.JobTask{}), ErrJobSystemClosed)
}
