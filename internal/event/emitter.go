package event

import (
	"runtime/debug"
	"sync"
)

// Listener handles events of one payload type.
type Listener[T any] func(Event[T])

// Emitter delivers events synchronously to its listeners in subscription
// order. A panicking listener is recovered and reported to the panic handler;
// the remaining listeners still run.
//
// Subscribing and unsubscribing are safe for concurrent use. Listeners added
// or removed during Emit take effect from the next Emit.
type Emitter[T any] struct {
	topic Topic
	cfg   emitterConfig

	mu        sync.RWMutex
	listeners []subscription[T]
	nextID    uint64
}

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// NewEmitter creates an emitter for events of the given topic.
func NewEmitter[T any](topic Topic, opts ...EmitterOption) *Emitter[T] {
	cfg := defaultEmitterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Emitter[T]{topic: topic, cfg: cfg}
}

// Topic returns the emitter's topic.
func (e *Emitter[T]) Topic() Topic {
	return e.topic
}

// Subscribe adds a listener and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (e *Emitter[T]) Subscribe(fn Listener[T]) (func(), error) {
	if fn == nil {
		return nil, ErrNilHandler
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, subscription[T]{id: id, fn: fn})

	return func() { e.unsubscribe(id) }, nil
}

func (e *Emitter[T]) unsubscribe(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.listeners {
		if s.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of listeners.
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

// Emit builds an event from payload and delivers it.
func (e *Emitter[T]) Emit(payload T, source string) Event[T] {
	ev := NewEvent(e.topic, payload, source)
	e.Deliver(ev)
	return ev
}

// Deliver sends ev to every current listener.
func (e *Emitter[T]) Deliver(ev Event[T]) {
	e.mu.RLock()
	listeners := e.listeners
	e.mu.RUnlock()

	for _, s := range listeners {
		e.call(s.fn, ev)
	}
}

// Clear removes all listeners.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = nil
}

func (e *Emitter[T]) call(fn Listener[T], ev Event[T]) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Topic: ev.Type, Value: r, Stack: string(debug.Stack())}
			func() {
				// The panic handler must not take the caller down with it.
				defer func() { _ = recover() }()
				e.cfg.panicHandler(err)
			}()
		}
	}()
	fn(ev)
}
