/*
Copyright 2016 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// terminationSignals are signals that cause the program to exit in the
// supported platforms (linux, darwin, windows).
var terminationSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// InterruptHandler runs a critical section under a context that is cancelled when the
// process receives a termination signal. On a signal the cleanup functions run exactly
// once, in order, and then the final handler is invoked.
type InterruptHandler struct {
	mu      sync.Mutex
	cleanup []func()
	final   func(os.Signal)
	once    sync.Once
}

// NewInterruptHandler creates a handler. If no final handler is specified, the default
// final is `os.Exit(1)`. A handler can only be used for one critical section.
func NewInterruptHandler(final func(os.Signal), cleanup ...func()) *InterruptHandler {
	return &InterruptHandler{
		final:   final,
		cleanup: cleanup,
	}
}

// OnInterrupt appends a cleanup function. Functions added after a signal arrived do not run.
func (h *InterruptHandler) OnInterrupt(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanup = append(h.cleanup, fn)
}

// Signal runs the cleanup functions and then the final handler. Only the first call has
// any effect.
func (h *InterruptHandler) Signal(s os.Signal) {
	h.once.Do(func() {
		h.mu.Lock()
		cleanup := h.cleanup
		h.mu.Unlock()
		for _, fn := range cleanup {
			fn()
		}
		if h.final == nil {
			os.Exit(1)
		}
		h.final(s)
	})
}

// Run calls fn with a context derived from ctx that is cancelled when a termination
// signal arrives. The cleanup functions run only if a signal arrives before fn returns,
// and Run does not return before they have finished.
func (h *InterruptHandler) Run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals...)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case sig := <-ch:
			cancel()
			h.Signal(sig)
		case <-done:
		}
	}()
	defer func() {
		signal.Stop(ch)
		close(done)
		wg.Wait()
	}()
	return fn(ctx)
}
