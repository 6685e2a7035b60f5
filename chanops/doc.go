// Package chanops provides combinators over pipeline receivers, plus
// bridges between pipelines and raw Go channels.
//
// [Merge], [Split], [Filter], [Batch] and [Drain] compose additional
// stages onto existing receivers: fan-in, fan-out, predicate filtering,
// fixed-size grouping, and a terminal discard that signals completion.
// Each is built on the runtime's own Process surface, so flow control
// and close propagation behave exactly as with hand-composed stages.
//
// [Feed] and [Out] cross the boundary to raw channels: Feed pumps a
// channel into a pipeline head, Out exposes a pipeline tail as a
// channel that closes when the pipeline does.
package chanops
