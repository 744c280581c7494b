package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitAndWaitAll(t *testing.T) {
	p := New(4, 2)
	defer p.Close()

	var counter int64
	const n = 500
	for i := 0; i < n; i++ {
		p.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	p.WaitAll()
	require.EqualValues(t, n, atomic.LoadInt64(&counter))
}

func TestSubmitBlocksOnFullQueue(t *testing.T) {
	p := New(1, 1)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-block
	})
	<-started
	p.Submit(func() {}) // fills the single queue slot while the worker is busy

	submitted := make(chan struct{})
	go func() {
		p.Submit(func() {})
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("third submit should not have completed while worker is busy and queue capacity consumed")
	case <-time.After(30 * time.Millisecond):
	}

	close(block)
	<-submitted
	p.WaitAll()
}

func TestWaitAllTracksInFlightNotJustQueue(t *testing.T) {
	p := New(1, 4)
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started

	done := make(chan struct{})
	go func() {
		p.WaitAll()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitAll returned while a task was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done
}
