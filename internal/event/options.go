package event

// PanicHandler receives panics recovered from listeners.
type PanicHandler func(err *PanicError)

// EmitterOption configures an Emitter.
type EmitterOption func(*emitterConfig)

type emitterConfig struct {
	panicHandler PanicHandler
}

func defaultEmitterConfig() emitterConfig {
	return emitterConfig{
		panicHandler: func(*PanicError) {},
	}
}

// WithPanicHandler sets the handler called when a listener panics.
func WithPanicHandler(h PanicHandler) EmitterOption {
	return func(c *emitterConfig) {
		if h != nil {
			c.panicHandler = h
		}
	}
}
