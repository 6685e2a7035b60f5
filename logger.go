package flowrt

import "log/slog"

// Logger defines an interface for logging at different severity levels.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, args ...any)
	// Info logs a message at info level.
	Info(msg string, args ...any)
	// Warn logs a message at warning level.
	Warn(msg string, args ...any)
	// Error logs a message at error level.
	Error(msg string, args ...any)
}

// NewSlogLogger returns a Logger backed by l, or by slog.Default() when l
// is nil. *slog.Logger already satisfies Logger structurally; this
// constructor only exists for symmetry with [NewZapLogger].
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// NewLoggingObserver builds a StepObserver that logs every stage
// lifecycle event to log at debug level (close events at info level).
// Attach it with [WithObserver]:
//
//	send, recv := flowrt.Channel[int](
//		flowrt.WithObserver(flowrt.NewLoggingObserver(flowrt.NewSlogLogger(nil))),
//	)
func NewLoggingObserver(log Logger) *StepObserver {
	return &StepObserver{
		OnEnqueue: func(stageID string) {
			log.Debug("FLOWRT: Enqueue", "stage", stageID)
		},
		OnStepEnter: func(stageID string) {
			log.Debug("FLOWRT: Step enter", "stage", stageID)
		},
		OnStepExit: func(stageID string) {
			log.Debug("FLOWRT: Step exit", "stage", stageID)
		},
		OnBroadcast: func(stageID string, downstreamCount int) {
			log.Debug("FLOWRT: Broadcast", "stage", stageID, "downstream", downstreamCount)
		},
		OnClose: func(stageID string) {
			log.Info("FLOWRT: Close", "stage", stageID)
		},
	}
}
