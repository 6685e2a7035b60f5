package flowrt

// Executor is the external scheduling collaborator every stage calls
// into via Schedule whenever it has a step ready to run.
// The runtime never calls Schedule re-entrantly while holding either of
// a stage's locks, and never schedules more than one outstanding task
// per stage at a time (see shared.go).
//
// Because a stage's scheduled closure captures the stage itself, a
// pending task keeps the stage reachable until the executor runs it;
// this is harmless under Go's garbage collector, since a stage that
// still has work scheduled was never eligible for collection in the
// first place.
type Executor interface {
	Schedule(task func())
}

// GoroutineExecutor runs every task on its own goroutine. It is the
// default executor and has no bound on concurrent in-flight steps.
type GoroutineExecutor struct{}

// Schedule implements Executor.
func (GoroutineExecutor) Schedule(task func()) { go task() }

var defaultExecutor Executor = GoroutineExecutor{}
