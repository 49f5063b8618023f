// Package event provides typed, synchronous event emitters.
//
// Events carry a dot-separated Topic, a typed payload and Metadata with a
// unique ID, timestamp and source:
//
//	changed := event.NewEmitter[Payload]("decorations.changed")
//	unsubscribe, _ := changed.Subscribe(func(ev event.Event[Payload]) {
//	    fmt.Println(ev.Metadata.Source, ev.Payload)
//	})
//	defer unsubscribe()
//
//	changed.Emit(Payload{...}, docID)
//
// Delivery happens in the emitting goroutine, in subscription order. A
// listener that panics is recovered and reported through the PanicHandler
// given with WithPanicHandler; delivery continues with the next listener.
package event
