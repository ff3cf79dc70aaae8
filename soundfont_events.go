// soundfont_events.go - Ordered processing of runtime soundfont change requests

package midisynth

import (
	"errors"
	"sync"
)

// ErrEventsStopped is returned by Send after Stop.
var ErrEventsStopped = errors.New("soundfont events stopped")

// SoundFontEvents applies soundfont change requests to a store in the order
// they were sent. A request that fails is reported and skipped; later
// requests still run. Renders that already hold a soundfont are not affected.
type SoundFontEvents struct {
	// OnError, if set before Start, is called for every rejected request.
	OnError func(change SoundFontChange, err error)

	store     *SoundFontStore
	queue     chan SoundFontChange
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	closed    bool
	mu        sync.RWMutex
}

// NewSoundFontEvents creates a processor with room for depth queued requests.
func NewSoundFontEvents(store *SoundFontStore, depth int) *SoundFontEvents {
	if depth < 0 {
		depth = 0
	}
	return &SoundFontEvents{
		store: store,
		queue: make(chan SoundFontChange, depth),
		done:  make(chan struct{}),
	}
}

// Start begins processing in a goroutine and returns immediately.
func (e *SoundFontEvents) Start() {
	e.startOnce.Do(func() {
		go func() {
			defer close(e.done)
			for change := range e.queue {
				e.apply(change)
			}
		}()
	})
}

// Send queues a request. It blocks while the queue is full.
func (e *SoundFontEvents) Send(change SoundFontChange) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrEventsStopped
	}
	e.queue <- change
	return nil
}

// Stop processes everything already queued, then returns.
func (e *SoundFontEvents) Stop() {
	// Start first so a Send blocked on a full queue can drain.
	e.Start()
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.queue)
		e.mu.Unlock()
	})
	<-e.done
}

func (e *SoundFontEvents) apply(change SoundFontChange) {
	if err := e.store.Replace(change); err != nil {
		componentLog("soundfont-events").Error("soundfont change rejected", "source", change.String(), "err", err)
		if e.OnError != nil {
			e.OnError(change, err)
		}
	}
}

// ApplySoundFontChanges applies changes in order and returns one entry per
// change, nil where it succeeded.
func ApplySoundFontChanges(store *SoundFontStore, changes ...SoundFontChange) []error {
	errs := make([]error, len(changes))
	for i, change := range changes {
		if err := store.Replace(change); err != nil {
			componentLog("soundfont-events").Error("soundfont change rejected", "source", change.String(), "err", err)
			errs[i] = err
		}
	}
	return errs
}
