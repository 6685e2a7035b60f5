package flowrt

import (
	"sync"
	"time"
)

// StageMetrics is a point-in-time snapshot of one stage's activity,
// produced by the observer built with [NewMetricsObserver].
type StageMetrics struct {
	// StageID identifies the stage the snapshot belongs to.
	StageID string
	// Enqueued is the total number of values accepted into the queue.
	Enqueued int64
	// Steps is the total number of scheduled step executions.
	Steps int64
	// Broadcasts is the total number of broadcast rounds.
	Broadcasts int64
	// LastStepDuration is the wall time of the most recent step.
	LastStepDuration time.Duration
	// Closed reports whether the stage's close hook has run.
	Closed bool
}

// StageMetricsCollector receives a snapshot after every step exit and
// once on close.
type StageMetricsCollector func(m StageMetrics)

// DistributeStageMetrics fans one snapshot out to multiple collectors.
func DistributeStageMetrics(collectors ...StageMetricsCollector) StageMetricsCollector {
	return func(m StageMetrics) {
		for _, c := range collectors {
			c(m)
		}
	}
}

// NewMetricsObserver builds a StepObserver that aggregates per-stage
// counters and reports a snapshot to collect after every step. A single
// observer may be shared by every stage of a pipeline; counters are
// tracked per stage ID.
func NewMetricsObserver(collect StageMetricsCollector) *StepObserver {
	agg := &metricsAggregator{
		collect: collect,
		stages:  make(map[string]*stageCounters),
	}
	return &StepObserver{
		OnEnqueue:   agg.enqueue,
		OnStepEnter: agg.stepEnter,
		OnStepExit:  agg.stepExit,
		OnBroadcast: agg.broadcast,
		OnClose:     agg.close,
	}
}

type stageCounters struct {
	enqueued   int64
	steps      int64
	broadcasts int64
	stepStart  time.Time
	lastStep   time.Duration
	closed     bool
}

type metricsAggregator struct {
	collect StageMetricsCollector

	mu     sync.Mutex
	stages map[string]*stageCounters
}

func (a *metricsAggregator) counters(stageID string) *stageCounters {
	c, ok := a.stages[stageID]
	if !ok {
		c = &stageCounters{}
		a.stages[stageID] = c
	}
	return c
}

func (a *metricsAggregator) snapshot(stageID string, c *stageCounters) StageMetrics {
	return StageMetrics{
		StageID:          stageID,
		Enqueued:         c.enqueued,
		Steps:            c.steps,
		Broadcasts:       c.broadcasts,
		LastStepDuration: c.lastStep,
		Closed:           c.closed,
	}
}

func (a *metricsAggregator) enqueue(stageID string) {
	a.mu.Lock()
	a.counters(stageID).enqueued++
	a.mu.Unlock()
}

func (a *metricsAggregator) stepEnter(stageID string) {
	a.mu.Lock()
	c := a.counters(stageID)
	c.steps++
	c.stepStart = time.Now()
	a.mu.Unlock()
}

func (a *metricsAggregator) stepExit(stageID string) {
	a.mu.Lock()
	c := a.counters(stageID)
	c.lastStep = time.Since(c.stepStart)
	m := a.snapshot(stageID, c)
	a.mu.Unlock()
	a.collect(m)
}

func (a *metricsAggregator) broadcast(stageID string, _ int) {
	a.mu.Lock()
	a.counters(stageID).broadcasts++
	a.mu.Unlock()
}

func (a *metricsAggregator) close(stageID string) {
	a.mu.Lock()
	c := a.counters(stageID)
	c.closed = true
	m := a.snapshot(stageID, c)
	a.mu.Unlock()
	a.collect(m)
}
