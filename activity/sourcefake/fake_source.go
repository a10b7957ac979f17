package sourcefake

import (
	"sync"

	"github.com/jrsteele09/go-session-guard/activity"
)

var _ activity.Source = (*FakeSource)(nil)

type listener struct {
	kinds map[activity.Signal]struct{}
	fn    func(activity.Signal)
}

// FakeSource is a scriptable activity.Source: tests and the demo binary call
// Emit to simulate user interaction.
type FakeSource struct {
	lock      sync.Mutex
	listeners map[int]*listener
	next      int
}

func New() *FakeSource {
	return &FakeSource{listeners: make(map[int]*listener)}
}

func (s *FakeSource) Subscribe(kinds []activity.Signal, fn func(activity.Signal)) func() {
	s.lock.Lock()
	n := s.next
	s.next++
	kindSet := make(map[activity.Signal]struct{}, len(kinds))
	for _, k := range kinds {
		kindSet[k] = struct{}{}
	}
	s.listeners[n] = &listener{kinds: kindSet, fn: fn}
	s.lock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lock.Lock()
			delete(s.listeners, n)
			s.lock.Unlock()
		})
	}
}

// Emit delivers a signal to every listener subscribed to its kind.
func (s *FakeSource) Emit(sig activity.Signal) {
	s.lock.Lock()
	fns := make([]func(activity.Signal), 0, len(s.listeners))
	for _, l := range s.listeners {
		if _, ok := l.kinds[sig]; ok {
			fns = append(fns, l.fn)
		}
	}
	s.lock.Unlock()

	for _, fn := range fns {
		fn(sig)
	}
}

// ListenerCount reports how many listeners are currently attached.
func (s *FakeSource) ListenerCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.listeners)
}
