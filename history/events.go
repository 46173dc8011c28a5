package history

import "sync"

// EventKind identifies a store notification.
type EventKind string

// Event kinds emitted by a Store.
const (
	EventEntryAdded    EventKind = "entry-added"
	EventUndo          EventKind = "undo"
	EventRedo          EventKind = "redo"
	EventClear         EventKind = "clear"
	EventMemoryWarning EventKind = "memory-warning"
)

// Event is delivered to subscribed handlers. Every event carries the
// stats snapshot taken right after the triggering operation.
type Event struct {
	Kind  EventKind
	Stats Stats
}

// Handler receives events. Handlers run synchronously on the goroutine
// performing the store operation and must not call back into the store.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// eventBus dispatches events to per-kind handler lists. Dispatch copies
// the handler slice under a read lock, so a handler may unsubscribe
// itself without deadlocking.
type eventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventKind][]subscription
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[EventKind][]subscription)}
}

func (b *eventBus) subscribe(kind EventKind, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, handler: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[kind]
		for i, sub := range list {
			if sub.id == id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (b *eventBus) emit(ev Event) {
	b.mu.RLock()
	list := b.subs[ev.Kind]
	handlers := make([]Handler, len(list))
	for i, sub := range list {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
