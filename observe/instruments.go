package observe

// Instruments bundles the primitives the store and the orchestrator record to.
type Instruments struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// NopInstruments returns instruments that record nothing.
func NopInstruments() Instruments {
	return Instruments{Tracer: NopTracer(), Metrics: NopMetrics(), Logger: NopLogger()}
}

// InstrumentsFromObserver builds Instruments from an Observer.
func InstrumentsFromObserver(obs Observer) (Instruments, error) {
	if obs == nil {
		return Instruments{}, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return Instruments{}, err
	}
	return Instruments{
		Tracer:  NewTracer(obs.Tracer()),
		Metrics: metrics,
		Logger:  obs.Logger(),
	}, nil
}

// WithDefaults fills nil members with no-op implementations.
func (i Instruments) WithDefaults() Instruments {
	if i.Tracer == nil {
		i.Tracer = NopTracer()
	}
	if i.Metrics == nil {
		i.Metrics = NopMetrics()
	}
	if i.Logger == nil {
		i.Logger = NopLogger()
	}
	return i
}
