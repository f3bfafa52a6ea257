package testkit

import (
	"sync/atomic"
	"testing"
	"time"
)

var retryDelay = 2 * time.Second

func TestSwapRestoresValue(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Swap(t, &retryDelay, time.Duration(0))
		if retryDelay != 0 {
			t.Fatalf("swap not applied, retryDelay = %v", retryDelay)
		}
	})

	// subtest cleanup has run by now
	if retryDelay != 2*time.Second {
		t.Fatalf("seam not restored, retryDelay = %v", retryDelay)
	}
}

func TestSwapFunctionSeam(t *testing.T) {
	var slept []time.Duration
	sleep := time.Sleep

	t.Run("inner", func(t *testing.T) {
		Swap(t, &sleep, func(d time.Duration) { slept = append(slept, d) })
		sleep(time.Minute)
	})

	if len(slept) != 1 || slept[0] != time.Minute {
		t.Fatalf("slept = %v, want [1m0s]", slept)
	}
}

func TestSerialExcludesParallelTests(t *testing.T) {
	var active atomic.Int32
	var overlapped atomic.Bool

	for _, name := range []string{"a", "b"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			Serial(t)
			if active.Add(1) > 1 {
				overlapped.Store(true)
			}
			time.Sleep(20 * time.Millisecond)
			active.Add(-1)
		})
	}

	t.Cleanup(func() {
		if overlapped.Load() {
			t.Fatal("serialized tests ran concurrently")
		}
	})
}
