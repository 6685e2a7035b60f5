package flowrt

import "go.uber.org/zap"

// zapLogger adapts a *zap.SugaredLogger to the Logger interface. The
// sugared logger's loosely typed key-value pairs map directly onto
// Logger's variadic args.
type zapLogger struct {
	l *zap.SugaredLogger
}

// NewZapLogger returns a Logger backed by l. Pass the sugared form of
// whatever zap logger the application already carries:
//
//	log := flowrt.NewZapLogger(zapLogger.Sugar())
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }
