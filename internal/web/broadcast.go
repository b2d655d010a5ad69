package web

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"taskline/internal/store"

	"github.com/charmbracelet/log"
)

// changeHub fans out "tasks changed" notifications to SSE subscribers.
type changeHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newChangeHub() *changeHub {
	return &changeHub{subs: map[chan struct{}]struct{}{}}
}

func (h *changeHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *changeHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// storeWatcher reloads the store when its backing data changes on disk and
// notifies the hub.
type storeWatcher struct {
	st       *store.TaskStore
	hub      *changeHub
	logger   *log.Logger
	interval time.Duration

	mu sync.Mutex
	fp string

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newStoreWatcher(st *store.TaskStore, hub *changeHub, logger *log.Logger, interval time.Duration) *storeWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &storeWatcher{
		st:       st,
		hub:      hub,
		logger:   logger,
		interval: interval,
		fp:       strings.TrimSpace(st.Fingerprint()),
		stopCh:   make(chan struct{}),
	}
}

func (w *storeWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *storeWatcher) fingerprint() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fp
}

// noteWrite records the fingerprint after a write made by this process, so the
// watcher does not reload the data it just wrote.
func (w *storeWatcher) noteWrite() {
	w.mu.Lock()
	w.fp = strings.TrimSpace(w.st.Fingerprint())
	w.mu.Unlock()
	w.hub.broadcast()
}

// check reloads when the fingerprint moved. It reports whether it did.
func (w *storeWatcher) check(ctx context.Context) bool {
	fp := strings.TrimSpace(w.st.Fingerprint())
	if fp == "" {
		return false
	}
	w.mu.Lock()
	if fp == w.fp {
		w.mu.Unlock()
		return false
	}
	w.fp = fp
	w.mu.Unlock()

	w.st.Reload(ctx)
	w.logger.Info("backing store changed on disk; reloaded", "backend", w.st.Describe(), "tasks", w.st.Len())
	w.hub.broadcast()
	return true
}

func (w *storeWatcher) loop() {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-t.C:
		}
		w.check(context.Background())
	}
}
