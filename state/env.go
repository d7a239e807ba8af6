// Package state keeps per-run program state shared by subcommands.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scpview/config"
)

type envKey struct{}

// LocalEnv is created before any subcommand runs and travels in context.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// render subcommand settings and results
	Overwrite bool
	Rendered  int
	Failed    int

	started    time.Time
	undoStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{started: time.Now()}
}

// ContextWithEnv returns context carrying fresh LocalEnv.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

// EnvFromContext returns LocalEnv stored by ContextWithEnv. Subcommands only
// run after it is stored, so absence is a programming error.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("state: no LocalEnv in context")
	}
	return env
}

// Elapsed reports time since program start.
func (e *LocalEnv) Elapsed() time.Duration {
	return time.Since(e.started)
}

// CaptureStdLog sends standard log package output to the program logger
// until ReleaseStdLog.
func (e *LocalEnv) CaptureStdLog() {
	if e.Log != nil {
		e.undoStdLog = zap.RedirectStdLog(e.Log)
	}
}

// ReleaseStdLog flushes the program logger and gives standard log its
// output back.
func (e *LocalEnv) ReleaseStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.undoStdLog != nil {
		e.undoStdLog()
		e.undoStdLog = nil
	}
}
