package flowrt

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ctsTarget is implemented by the upstream shared process a child delivers
// clear-to-send tokens to. It is a plain back-reference: holding it never
// keeps the upstream alive (the upstream is already kept alive by its own
// downstream edges, one of which is this child).
type ctsTarget interface {
	cts()
}

// inbound is the sender-facing protocol a shared process exposes to
// whatever feeds it: external producers via Sender[Arg], or an upstream
// stage's broadcast.
type inbound[Arg any] interface {
	send(v Arg)
	addSender()
	removeSender()
}

// outbound is the receiver-facing protocol a shared process exposes to
// Receiver handles and to the Pipe composition function that attaches a
// new downstream stage.
type outbound[Yield any] interface {
	ctsTarget
	addReceiver()
	removeReceiver()
	appendDownstream(s Sender[Yield])
	stageConfig() stageConfig
	isVoid() bool
}

// sharedProcess is the per-stage coordination object at the core of this
// runtime. It owns a user-supplied Process, an input message queue, the
// set of downstream senders, and the reference counts tying the stage to
// its producers and consumers.
//
// Two locks protect its state and are never nested: muState guards the
// queue and the running/close/final/suspend-count bookkeeping; muDown
// guards the downstream list. User code (Await, Yield, Close) and
// downstream sends are always invoked with neither lock held.
type sharedProcess[Arg, Yield any] struct {
	id string

	proc      Process[Arg, Yield]
	oneToOne  bool
	voidYield bool
	cfg       stageConfig
	upstream  ctsTarget // nil for a head stage created by Channel

	senderCount   atomic.Int64
	receiverCount atomic.Int64

	muState      sync.Mutex
	queue        []Arg
	running      bool
	suspendCount int
	closeQueue   bool
	final        bool

	muDown     sync.Mutex
	downstream []Sender[Yield]
}

func newSharedProcess[Arg, Yield any](proc Process[Arg, Yield], upstream ctsTarget, cfg stageConfig) *sharedProcess[Arg, Yield] {
	return &sharedProcess[Arg, Yield]{
		id:        uuid.NewString(),
		proc:      proc,
		oneToOne:  oneToOne[Arg, Yield](proc),
		voidYield: isVoidType[Yield](),
		cfg:       cfg,
		upstream:  upstream,
	}
}

func (p *sharedProcess[Arg, Yield]) stageConfig() stageConfig { return p.cfg }
func (p *sharedProcess[Arg, Yield]) isVoid() bool             { return p.voidYield }

// noReceivers reports whether the stage should run without waiting for a
// downstream attachment. A void-yielding stage has nothing to broadcast,
// so any receiver handles it may carry never gate execution.
func (p *sharedProcess[Arg, Yield]) noReceivers() bool {
	return p.voidYield || p.receiverCount.Load() == 0
}

// --- sender-facing protocol ---

func (p *sharedProcess[Arg, Yield]) send(v Arg) {
	p.muState.Lock()
	p.queue = append(p.queue, v)
	doRun := p.noReceivers() && !p.running
	if doRun {
		p.running = true
	}
	p.muState.Unlock()

	p.notifyEnqueue()

	if doRun {
		p.scheduleStep()
	}
}

func (p *sharedProcess[Arg, Yield]) addSender() {
	p.senderCount.Add(1)
}

func (p *sharedProcess[Arg, Yield]) removeSender() {
	if p.senderCount.Add(-1) != 0 {
		return
	}
	p.muState.Lock()
	p.closeQueue = true
	doRun := p.noReceivers() && !p.running
	if doRun {
		p.running = true
	}
	p.muState.Unlock()
	if doRun {
		p.scheduleStep()
	}
}

// --- receiver-facing protocol ---

func (p *sharedProcess[Arg, Yield]) addReceiver() {
	p.receiverCount.Add(1)
}

// removeReceiver kicks a step on the drop to zero so a closing pipeline
// with no live receivers still drains and terminates.
func (p *sharedProcess[Arg, Yield]) removeReceiver() {
	if p.receiverCount.Add(-1) != 0 {
		return
	}
	p.muState.Lock()
	doRun := (len(p.queue) > 0 || p.closeQueue) && !p.running
	if doRun {
		p.running = true
	}
	p.muState.Unlock()
	if doRun {
		p.scheduleStep()
	}
}

func (p *sharedProcess[Arg, Yield]) appendDownstream(s Sender[Yield]) {
	p.muDown.Lock()
	p.downstream = append(p.downstream, s)
	p.muDown.Unlock()
}

// cts (clear-to-send) is invoked by a downstream stage once it has
// dequeued ("accepted") a value this process broadcast to it, and once by
// the broadcasting step itself as its own tail acknowledgement. When the
// last outstanding acknowledgement arrives, the stage either schedules
// another step (pending yield, queued input, or a close to apply) or goes
// idle.
func (p *sharedProcess[Arg, Yield]) cts() {
	p.muState.Lock()
	assertf(p.running, "cts received while process not running")
	p.suspendCount--
	assertf(p.suspendCount >= 0, "suspend_count went negative")
	if p.suspendCount != 0 {
		p.muState.Unlock()
		return
	}
	shouldRun := p.proc.State() == StateYield || len(p.queue) > 0 || p.closeQueue
	if shouldRun {
		p.muState.Unlock()
		p.scheduleStep()
		return
	}
	p.running = false
	p.muState.Unlock()
}

// --- scheduling core ---

func (p *sharedProcess[Arg, Yield]) scheduleStep() {
	p.cfg.executor.Schedule(func() { p.step() })
}

func (p *sharedProcess[Arg, Yield]) step() {
	p.notifyStepEnter()

	if p.oneToOne {
		p.stepOneShot()
		return
	}
	p.stepGeneral()
}

// dequeue removes one message atomically. If the queue is non-empty, it
// pops the head and, when removal leaves the queue empty, signals cts
// upstream so the upstream can refill. If the queue is empty and a close
// has been requested, close transfers to final and the caller must invoke
// the user Close hook with the lock released.
func (p *sharedProcess[Arg, Yield]) dequeue() (v Arg, ok bool, shouldClose bool) {
	p.muState.Lock()
	if len(p.queue) > 0 {
		v = p.queue[0]
		p.queue = p.queue[1:]
		ok = true
		emptyAfter := len(p.queue) == 0
		p.muState.Unlock()
		if emptyAfter {
			p.sendCtsUpstream()
		}
		return v, true, false
	}
	if p.closeQueue {
		p.closeQueue = false
		p.final = true
		shouldClose = true
	}
	p.muState.Unlock()
	return v, false, shouldClose
}

func (p *sharedProcess[Arg, Yield]) sendCtsUpstream() {
	if p.upstream != nil {
		p.upstream.cts()
	}
}

// stepGeneral drives a stateful process: consume queued input until the
// process reports StateYield, then yield, broadcast, and suspend until
// every downstream acknowledges. A step may begin with a yield already
// pending (the previous round's cts drain saw StateYield), in which case
// nothing is dequeued before yielding.
func (p *sharedProcess[Arg, Yield]) stepGeneral() {
	for {
		if p.proc.State() == StateYield {
			out := p.proc.Yield()
			p.broadcast(out)
			p.notifyStepExit()
			p.cts()
			return
		}

		v, ok, shouldClose := p.dequeue()
		if !ok {
			if shouldClose {
				p.proc.Close()
				p.notifyClose()
			}
			p.notifyStepExit()
			p.taskDone()
			return
		}

		p.proc.Await(v)
	}
}

// stepOneShot drives a one-to-one mapping stage built with FromFunc. At
// most one message is consumed per task; consume and produce collapse
// into a single function invocation.
func (p *sharedProcess[Arg, Yield]) stepOneShot() {
	v, ok, shouldClose := p.dequeue()
	if !ok {
		if shouldClose {
			p.proc.Close()
			p.notifyClose()
		}
		p.notifyStepExit()
		p.taskDone()
		return
	}

	p.proc.Await(v)
	out := p.proc.Yield()
	p.broadcast(out)
	p.notifyStepExit()
	p.cts()
}

// broadcast snapshots the downstream list, arms suspendCount for the
// round (one token per downstream plus one for the step itself), then
// invokes each downstream sender once in list order with no lock held.
// Senders appended after the snapshot catch the next value.
func (p *sharedProcess[Arg, Yield]) broadcast(v Yield) {
	p.muDown.Lock()
	n := len(p.downstream)
	snapshot := make([]Sender[Yield], n)
	copy(snapshot, p.downstream)
	p.muDown.Unlock()

	p.muState.Lock()
	assertf(p.suspendCount == 0, "broadcast issued while suspend_count != 0")
	p.suspendCount = n + 1
	p.muState.Unlock()

	p.notifyBroadcast(n)

	for _, s := range snapshot {
		s.Send(v)
	}
}

// taskDone is entered when a step suspends with nothing left to do right
// now: it decides whether more work arrived while the step ran
// (reschedule) and, if a close was just finalized, tears down the
// downstream list outside the lock.
func (p *sharedProcess[Arg, Yield]) taskDone() {
	p.muState.Lock()
	p.running = len(p.queue) > 0 || p.closeQueue
	isFinal := p.final
	running := p.running
	assertf(!(running && isFinal), "running and final true simultaneously")
	p.muState.Unlock()

	if isFinal {
		p.teardown()
	}
	if running {
		p.scheduleStep()
	}
}

// teardown clears the downstream list, dropping this process's ownership
// of each downstream edge (Sender.Close), which propagates close to every
// downstream stage in turn.
func (p *sharedProcess[Arg, Yield]) teardown() {
	p.muDown.Lock()
	list := p.downstream
	p.downstream = nil
	p.muDown.Unlock()

	for _, s := range list {
		s.Close()
	}
}

func isVoidType[T any]() bool {
	var zero T
	_, ok := any(zero).(struct{})
	return ok
}
