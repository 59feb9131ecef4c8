package attrs

import (
	"reflect"
	"slices"
	"sync"
)

// WatchFunc is called with the new value of a watched attribute.
// It runs while the store is locked, so it must not block or call back into the store.
type WatchFunc func(value any)

// watcher is a registered callback with an identity used for removal.
type watcher struct {
	id uint64
	fn WatchFunc
}

// Store holds named attribute values and their watchers.
type Store struct {
	// values maps attribute names to their current values.
	values map[string]any
	// watchers maps attribute names to callbacks in registration order.
	watchers map[string][]watcher
	// nextID numbers watchers for Watch cancellation.
	nextID uint64
	// mu serializes mutations and notifications.
	mu sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values:   make(map[string]any),
		watchers: make(map[string][]watcher),
	}
}

// Get returns a copy of the current value of the named attribute.
func (s *Store) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[name]

	return clone(value), ok
}

// Set stores value under name and notifies watchers.
// A value deep-equal to the current one is ignored and Set returns false.
func (s *Store) Set(name string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.values[name]; ok && reflect.DeepEqual(current, value) {
		return false
	}

	s.values[name] = clone(value)

	for _, w := range s.watchers[name] {
		w.fn(clone(value))
	}

	return true
}

// Watch registers fn to be called on every accepted change of the named attribute.
// The returned function removes the registration; it is safe to call more than once.
func (s *Store) Watch(name string, fn WatchFunc) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.watchers[name] = append(s.watchers[name], watcher{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.watchers[name] = slices.DeleteFunc(s.watchers[name], func(w watcher) bool {
			return w.id == id
		})
	}
}

// WatcherCount returns how many watchers are registered for name.
func (s *Store) WatcherCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.watchers[name])
}

// clone copies slice values so callers never share backing arrays with the store.
func clone(value any) any {
	switch v := value.(type) {
	case []bool:
		return slices.Clone(v)
	case []string:
		return slices.Clone(v)
	case []int:
		return slices.Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = clone(elem)
		}

		return out
	default:
		return value
	}
}
