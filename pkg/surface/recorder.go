package surface

import (
	"sync"
	"time"
)

// Recorder is a headless Surface that keeps every scene it was given.
// Transitions complete after their duration on a timer goroutine.
type Recorder struct {
	width, height float64

	mu      sync.Mutex
	scenes  []Scene
	timers  []*time.Timer
	clears  int
	notify  chan Scene
	current *Scene
}

// NewRecorder creates a recorder for a canvas of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

// Size implements Surface.
func (r *Recorder) Size() (float64, float64) { return r.width, r.height }

// Show implements Surface.
func (r *Recorder) Show(s Scene) { r.record(s) }

// Transition implements Surface. A nil done is allowed.
func (r *Recorder) Transition(s Scene, d time.Duration, done func()) {
	r.record(s)
	if done == nil {
		return
	}
	t := time.AfterFunc(max(d, 0), done)
	r.mu.Lock()
	r.timers = append(r.timers, t)
	r.mu.Unlock()
}

// Clear implements Surface.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.current = nil
}

// Notify returns a channel receiving every recorded scene. Sends never
// block; scenes are dropped when the buffer is full.
func (r *Recorder) Notify(buffer int) <-chan Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notify = make(chan Scene, buffer)
	return r.notify
}

func (r *Recorder) record(s Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes = append(r.scenes, s)
	r.current = &r.scenes[len(r.scenes)-1]
	if r.notify != nil {
		select {
		case r.notify <- s:
		default:
		}
	}
}

// Scenes returns a copy of the recorded scenes, oldest first.
func (r *Recorder) Scenes() []Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Scene(nil), r.scenes...)
}

// Current returns the visible scene, if any.
func (r *Recorder) Current() (Scene, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Scene{}, false
	}
	return *r.current, true
}

// Clears counts calls to Clear.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Stop cancels pending transition callbacks.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}
