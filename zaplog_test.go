package flowrt_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mvandenburg/flowrt"
)

func TestNewZapLogger_ForwardsLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := flowrt.NewZapLogger(zap.New(core).Sugar())

	log.Debug("debug msg", "k", "v")
	log.Info("info msg")
	log.Warn("warn msg")
	log.Error("error msg")

	entries := logs.All()
	require.Len(t, entries, 4)
	require.Equal(t, "debug msg", entries[0].Message)
	require.Equal(t, zap.DebugLevel, entries[0].Level)
	require.Equal(t, zap.InfoLevel, entries[1].Level)
	require.Equal(t, zap.WarnLevel, entries[2].Level)
	require.Equal(t, zap.ErrorLevel, entries[3].Level)

	fields := entries[0].ContextMap()
	require.Equal(t, "v", fields["k"])
}

func TestNewZapLogger_DrivesLoggingObserver(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	obs := flowrt.NewLoggingObserver(flowrt.NewZapLogger(zap.New(core).Sugar()))

	send, recv := flowrt.Channel[int](flowrt.WithObserver(obs))

	var sink collector[int]
	require.NoError(t, flowrt.Sink(recv, sink.add))

	send.Send(1)
	send.Close()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("FLOWRT: Close").Len() == 2
	}, waitFor, tick)
	require.Greater(t, logs.FilterMessage("FLOWRT: Enqueue").Len(), 0)
}
