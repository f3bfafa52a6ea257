package testkit

import (
	"sync"
	"testing"
)

var serialMu sync.Mutex

// Swap replaces *target for the duration of the test and restores it on
// cleanup. The clients and services expose sleep seams for pacing and
// retry delays; tests pin them through here so no real time passes
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process-wide lock for the duration of the test. Tests
// swapping package-level seams take it so parallel tests never observe
// a half-swapped value
func Serial(t *testing.T) {
	t.Helper()
	serialMu.Lock()
	t.Cleanup(serialMu.Unlock)
}
