package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetransmitTimerFiresAndBacksOff(t *testing.T) {
	var fires int32
	tm := New(func() { atomic.AddInt32(&fires, 1) })
	tm.interval = 5 * time.Millisecond

	tm.Start()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fires) >= 1 }, time.Second, time.Millisecond)

	tm.mu.Lock()
	grew := tm.interval > 5*time.Millisecond
	tm.mu.Unlock()
	require.True(t, grew)
}

func TestRetransmitTimerStopResetsInterval(t *testing.T) {
	tm := New(func() {})
	tm.interval = 30 * time.Second

	tm.Start()
	tm.Stop()

	tm.mu.Lock()
	defer tm.mu.Unlock()
	require.Equal(t, initialInterval, tm.interval)
	require.Nil(t, tm.timer)
}

func TestRetransmitTimerCapsAtMaxInterval(t *testing.T) {
	tm := New(func() {})
	tm.interval = maxInterval - time.Millisecond

	tm.fire()

	tm.mu.Lock()
	defer tm.mu.Unlock()
	require.Equal(t, maxInterval, tm.interval)
}
