package goless_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goless "github.com/rgalanakis/goless-go"
)

func TestWaitGroupFanIn(t *testing.T) {
	wg := goless.NewWaitGroup()
	var completed int64

	const workers = 5
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		goless.Go(func() {
			atomic.AddInt64(&completed, 1)
			wg.Done()
		})
	}
	wg.Wait()

	assert.Equal(t, int64(workers), atomic.LoadInt64(&completed))
}

func TestWaitGroupConstructorDelta(t *testing.T) {
	wg := goless.NewWaitGroup(2)
	goless.Go(wg.Done)
	goless.Go(wg.Done)
	wg.Wait()
}

func TestWaitGroupWaitTwiceFails(t *testing.T) {
	wg := goless.NewWaitGroup()
	wg.Wait()
	assert.PanicsWithValue(t, goless.ErrInvalidWaitGroup, func() {
		wg.Wait()
	})
}

func TestWaitGroupAddAfterWaitFails(t *testing.T) {
	wg := goless.NewWaitGroup(1)
	goless.Go(wg.Done)
	wg.Wait()
	assert.PanicsWithValue(t, goless.ErrInvalidWaitGroup, func() {
		wg.Add(1)
	})
}

func TestWaitGroupDoneWithoutAddFails(t *testing.T) {
	wg := goless.NewWaitGroup()
	assert.PanicsWithValue(t, goless.ErrInvalidWaitGroup, func() {
		wg.Done()
	})
}

func TestWaitGroupAddNonPositiveFails(t *testing.T) {
	wg := goless.NewWaitGroup()
	assert.Panics(t, func() {
		wg.Add(0)
	})
}

func TestWaitGroupAsSelectCase(t *testing.T) {
	wg := goless.NewWaitGroup(1)
	goless.Go(wg.Done)

	_, _, err := goless.Select(wg.WaitCase())
	require.NoError(t, err)
}

func TestWaitGroupAsSelectCaseWhenAlreadyDone(t *testing.T) {
	wg := goless.NewWaitGroup(1)
	wg.Done()

	_, _, err := goless.Select(wg.WaitCase())
	require.NoError(t, err)
}
