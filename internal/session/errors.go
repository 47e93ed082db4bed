package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Kind classifies a failure absorbed by the session.
type Kind int

const (
	// KindEnvironmentUnavailable means no wallet provider is reachable.
	KindEnvironmentUnavailable Kind = iota + 1

	// KindAuthorizationDeclined means the user rejected a connection request.
	KindAuthorizationDeclined

	// KindBindingFailure means the contract handle could not be constructed.
	KindBindingFailure

	// KindReadFailure means a task list refresh failed.
	KindReadFailure

	// KindSubmissionFailure means a mutation failed to submit or did not confirm.
	KindSubmissionFailure
)

var (
	ErrEnvironmentUnavailable = errors.New("environment unavailable")
	ErrAuthorizationDeclined  = errors.New("authorization declined")
	ErrBindingFailure         = errors.New("binding failure")
	ErrReadFailure            = errors.New("read failure")
	ErrSubmissionFailure      = errors.New("submission failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindEnvironmentUnavailable:
		return ErrEnvironmentUnavailable
	case KindAuthorizationDeclined:
		return ErrAuthorizationDeclined
	case KindBindingFailure:
		return ErrBindingFailure
	case KindReadFailure:
		return ErrReadFailure
	case KindSubmissionFailure:
		return ErrSubmissionFailure
	default:
		return errors.New("unknown")
	}
}

func (k Kind) String() string { return k.sentinel().Error() }

// Error is a failure the session absorbed at the point of occurrence.
type Error struct {
	Kind      Kind
	Op        string
	Account   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// Reporter receives every failure the session swallows.
type Reporter interface {
	Report(e *Error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(e *Error)

func (f ReporterFunc) Report(e *Error) { f(e) }

type nopReporter struct{}

func (nopReporter) Report(*Error) {}

// NewZapReporter returns a Reporter that writes one structured entry per failure.
func NewZapReporter(logger *zap.Logger) Reporter {
	return &zapReporter{logger: logger}
}

type zapReporter struct {
	logger *zap.Logger
}

func (r *zapReporter) Report(e *Error) {
	fields := []zap.Field{
		zap.Stringer("kind", e.Kind),
		zap.String("op", e.Op),
	}
	if e.Account != "" {
		fields = append(fields, zap.String("account", e.Account))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if ce := r.logger.Check(levelFor(e.Kind), e.Kind.String()); ce != nil {
		ce.Write(fields...)
	}
}

func levelFor(k Kind) zapcore.Level {
	switch k {
	case KindEnvironmentUnavailable:
		return zapcore.DebugLevel
	case KindAuthorizationDeclined:
		return zapcore.InfoLevel
	case KindBindingFailure:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
