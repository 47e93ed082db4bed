package session_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"chaintodo/internal/session"
)

func TestError_MatchesKindAndCause(t *testing.T) {
	err := &session.Error{Kind: session.KindReadFailure, Op: "getTasks", Err: io.EOF}

	assert.ErrorIs(t, err, session.ErrReadFailure)
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, session.ErrBindingFailure)
	assert.Equal(t, "getTasks: read failure: EOF", err.Error())

	bare := &session.Error{Kind: session.KindEnvironmentUnavailable, Op: "bind"}
	assert.True(t, errors.Is(bare, session.ErrEnvironmentUnavailable))
	assert.Equal(t, "bind: environment unavailable", bare.Error())
}

func TestZapReporter_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rep := session.NewZapReporter(zap.New(core))

	rep.Report(&session.Error{Kind: session.KindEnvironmentUnavailable, Op: "bind"})
	rep.Report(&session.Error{
		Kind:      session.KindSubmissionFailure,
		Op:        "createTask",
		Account:   "0xAAA",
		RequestID: "req-1",
		Err:       io.ErrUnexpectedEOF,
	})
	rep.Report(&session.Error{Kind: session.KindBindingFailure, Op: "bind", Err: io.EOF})

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, "submission failure", fields["kind"])
	assert.Equal(t, "createTask", fields["op"])
	assert.Equal(t, "0xAAA", fields["account"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), fields["error"])
}

func TestZapReporter_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rep := session.NewZapReporter(zap.New(core))

	rep.Report(&session.Error{Kind: session.KindEnvironmentUnavailable, Op: "resolveSilently"})

	assert.Zero(t, logs.Len())
}
