package flowrt

// StepObserver is an ambient, optional hook into a stage's lifecycle,
// attached via [WithObserver]. Every field is optional; nil fields are
// skipped. It is the seam the [Logger] and [StageMetrics] wiring builds
// on (see logger.go, zaplog.go, metrics.go), and is also the natural
// instrumentation point for asserting in tests that step entries and
// exits strictly alternate.
//
// Callbacks are invoked synchronously and never while either of the
// stage's locks is held. OnEnqueue runs on whichever goroutine sent the
// value (a producer or the upstream stage's task), so it may run
// concurrently with the stage's other callbacks. The remaining callbacks
// run from the stage's own task and never overlap one another for the
// same stage (the runtime guarantees at most one in-flight step per
// stage).
type StepObserver struct {
	// OnEnqueue fires when a value is accepted into the stage's queue.
	OnEnqueue func(stageID string)
	// OnStepEnter fires at the start of a scheduled step.
	OnStepEnter func(stageID string)
	// OnStepExit fires at the end of a step, whether it produced output,
	// suspended idle, or closed the stage, before the stage can schedule
	// its next step.
	OnStepExit func(stageID string)
	// OnBroadcast fires once per broadcast round with the number of
	// downstream senders notified.
	OnBroadcast func(stageID string, downstreamCount int)
	// OnClose fires once, after the user Process's Close hook returns.
	OnClose func(stageID string)
}

func (p *sharedProcess[Arg, Yield]) notifyEnqueue() {
	if p.cfg.observer != nil && p.cfg.observer.OnEnqueue != nil {
		p.cfg.observer.OnEnqueue(p.id)
	}
}

func (p *sharedProcess[Arg, Yield]) notifyStepEnter() {
	if p.cfg.observer != nil && p.cfg.observer.OnStepEnter != nil {
		p.cfg.observer.OnStepEnter(p.id)
	}
}

func (p *sharedProcess[Arg, Yield]) notifyStepExit() {
	if p.cfg.observer != nil && p.cfg.observer.OnStepExit != nil {
		p.cfg.observer.OnStepExit(p.id)
	}
}

func (p *sharedProcess[Arg, Yield]) notifyBroadcast(n int) {
	if p.cfg.observer != nil && p.cfg.observer.OnBroadcast != nil {
		p.cfg.observer.OnBroadcast(p.id, n)
	}
}

func (p *sharedProcess[Arg, Yield]) notifyClose() {
	if p.cfg.observer != nil && p.cfg.observer.OnClose != nil {
		p.cfg.observer.OnClose(p.id)
	}
}
