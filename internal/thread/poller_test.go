package thread

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

func TestPollerInvokesRefreshCallback(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refreshes atomic.Int32
	done := make(chan struct{})
	poller := NewPoller(s, 5*time.Millisecond, nil)
	go func() {
		poller.Run(ctx, func() { refreshes.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool {
		return refreshes.Load() >= 2
	}, time.Second, 2*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}

func TestPollerStopsSilentlyWithoutContact(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())

	ctx, cancel := context.WithCancel(context.Background())
	var refreshes atomic.Int32
	done := make(chan struct{})
	poller := NewPoller(s, 2*time.Millisecond, nil)
	go func() {
		poller.Run(ctx, func() { refreshes.Add(1) })
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	assert.Zero(t, refreshes.Load(), "no refresh without an active contact")
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := NewPoller(nil, 0, nil)
	assert.Equal(t, 10*time.Second, p.interval)
}
