package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter_Fires(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var fired atomic.Bool
	s.After(10*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond, "task did not fire")
}

func TestCancel_PreventsFiring(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	var fired atomic.Bool
	task := s.After(50*time.Millisecond, func() { fired.Store(true) })
	task.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load(), "cancelled task fired")
}

func TestCancel_Twice(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	task := s.After(50*time.Millisecond, func() {})
	task.Cancel()
	task.Cancel() // must not panic
}

func TestStopAll_CancelsPending(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		s.After(50*time.Millisecond, func() { fired.Add(1) })
	}
	s.StopAll()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "tasks fired after StopAll")
}

func TestAfter_OnStoppedScheduler(t *testing.T) {
	s := NewScheduler()
	s.StopAll()

	var fired atomic.Bool
	task := s.After(10*time.Millisecond, func() { fired.Store(true) })
	require.NotNil(t, task)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load(), "stopped scheduler ran a task")
}
