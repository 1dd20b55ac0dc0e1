package chans_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rgalanakis/goless-go/internal/chans"
	"github.com/rgalanakis/goless-go/internal/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSched() scheduler.Scheduler {
	return scheduler.NewGoroutineBackend()
}

func TestSyncChannelEcho(t *testing.T) {
	// A task sends 1 on a sync channel, main receives it.
	sched := newSched()
	ch := chans.New(sched, 0)

	sched.Spawn(func() {
		require.NoError(t, ch.Send(1))
	})

	v, err := ch.Recv()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBoundedFillAndDrain(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 2)
	started := make(chan struct{})
	done := make(chan struct{})

	sched.Spawn(func() {
		close(started)
		require.NoError(t, ch.Send(4))
		require.NoError(t, ch.Send(3))
		require.NoError(t, ch.Send(2))
		require.NoError(t, ch.Send(1))
		close(done)
	})
	<-started
	// Give the sender a moment to park on send(2) once the buffer is full.
	time.Sleep(20 * time.Millisecond)

	v1, err := ch.Recv()
	require.NoError(t, err)
	v2, err := ch.Recv()
	require.NoError(t, err)
	assert.Equal(t, []any{4, 3}, []any{v1, v2})

	v3, err := ch.Recv()
	require.NoError(t, err)
	v4, err := ch.Recv()
	require.NoError(t, err)
	assert.Equal(t, []any{2, 1}, []any{v3, v4})

	<-done
}

func TestCloseTerminatesIteration(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 2)
	require.NoError(t, ch.Send("one"))
	require.NoError(t, ch.Send("two"))
	require.NoError(t, ch.Close())

	var got []any
	for v := range ch.Iter() {
		got = append(got, v)
	}
	assert.Equal(t, []any{"one", "two"}, got)
}

func TestSendOnClosedChannelFails(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 1)
	require.NoError(t, ch.Send("hi"))
	require.NoError(t, ch.Close())
	err := ch.Send("bye")
	assert.ErrorIs(t, err, chans.ErrClosed)
}

func TestRecvOnClosedChannelFailsAfterDraining(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 1)
	require.NoError(t, ch.Send("hi"))
	require.NoError(t, ch.Close())

	v, err := ch.Recv()
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	_, err = ch.Recv()
	assert.ErrorIs(t, err, chans.ErrClosed)
}

func TestCloseWakesBlockedReceiver(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 0)
	errc := make(chan error, 1)

	sched.Spawn(func() {
		_, err := ch.Recv()
		errc <- err
	})
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ch.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, chans.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked receiver was never woken by Close")
	}
}

func TestCloseWakesBlockedSender(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 1)
	require.NoError(t, ch.Send("filler")) // fill the one slot
	errc := make(chan error, 1)

	sched.Spawn(func() {
		errc <- ch.Send("second")
	})
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ch.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, chans.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was never woken by Close")
	}
}

func TestUnboundedSendNeverBlocks(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, chans.Unbounded)
	for i := 0; i < 1000; i++ {
		require.NoError(t, ch.Send(i))
	}
	require.NoError(t, ch.Close())

	count := 0
	for range ch.Iter() {
		count++
	}
	assert.Equal(t, 1000, count)
}

func TestRecvDetectsDeadlockWithNoOtherRunnableTask(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 0)

	_, err := ch.Recv()
	assert.ErrorIs(t, err, chans.ErrDeadlock)
}

func TestSendDetectsDeadlockWithNoOtherRunnableTask(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 0)

	err := ch.Send("nobody is listening")
	assert.ErrorIs(t, err, chans.ErrDeadlock)
}

func TestSendOnBoundedChannelDetectsDeadlockWhenFull(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 1)
	require.NoError(t, ch.Send("fills the one slot"))

	err := ch.Send("nobody will ever make room")
	assert.ErrorIs(t, err, chans.ErrDeadlock)
}

func TestFIFOOrderSingleSenderSingleReceiver(t *testing.T) {
	sched := newSched()
	ch := chans.New(sched, 3)
	go func() {
		for i := 0; i < 100; i++ {
			_ = ch.Send(i)
		}
		_ = ch.Close()
	}()

	var got []int
	for v := range ch.Iter() {
		got = append(got, v.(int))
	}
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.Len(t, got, 100)
}
