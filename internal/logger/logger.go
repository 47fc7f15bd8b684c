package logger

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Environment variable name for log level configuration.
const envLogLevel = "HANDSHAKE_LOG_LEVEL"

var (
	// atomicLevel implements slog.Leveler and can be changed at runtime.
	atomicLevel = &dynamicLevel{v: int64(slog.LevelInfo)}
	// global logger instance
	global   *slog.Logger
	initOnce sync.Once

	// Optional flag (users may pass -log.level=debug). If flags.Parse() hasn't
	// yet been called when Init is invoked, we still read the raw os.Args.
	flagLevel = flag.String("log.level", "", "log level (debug, info, warn, error)")
)

// dynamicLevel is an atomic Leveler.
type dynamicLevel struct{ v int64 }

func (d *dynamicLevel) Level() slog.Level { return slog.Level(atomic.LoadInt64(&d.v)) }
func (d *dynamicLevel) set(l slog.Level)  { atomic.StoreInt64(&d.v, int64(l)) }

// Init initializes the global logger. It is safe to call multiple times; the
// first call wins except SetLevel / UseWriter which mutate state intentionally.
func Init() {
	initOnce.Do(func() {
		lvl := detectLevel()
		atomicLevel.set(lvl)
		global = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: atomicLevel}))
	})
}

// detectLevel resolves the initial log level from (precedence high→low):
//  1. command-line flag -log.level
//  2. environment variable HANDSHAKE_LOG_LEVEL
//  3. default (info)
func detectLevel() slog.Level {
	// Attempt to parse flag value (handles both parsed & unparsed states).
	if *flagLevel == "" {
		for _, arg := range os.Args[1:] {
			if strings.HasPrefix(arg, "-log.level=") {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) == 2 {
					*flagLevel = parts[1]
				}
			}
		}
	}
	if lvl, ok := parseLevel(strings.TrimSpace(*flagLevel)); ok {
		return lvl
	}
	if env := os.Getenv(envLogLevel); env != "" {
		if lvl, ok := parseLevel(env); ok {
			return lvl
		}
	}
	return slog.LevelInfo
}

// parseLevel converts string to slog.Level.
func parseLevel(s string) (slog.Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	}
	return 0, false
}

// SetLevel changes the runtime log level.
func SetLevel(level string) error {
	Init()
	lvl, ok := parseLevel(level)
	if !ok {
		return errors.New("invalid log level: " + level)
	}
	atomicLevel.set(lvl)
	return nil
}

// Level returns the current runtime level as string.
func Level() string {
	Init()
	return atomicLevel.Level().String()
}

// UseWriter swaps the output writer (intended for tests). Retains current level.
func UseWriter(w io.Writer) {
	Init()
	global = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: atomicLevel}))
}

// Logger returns the global logger (ensures Init was called).
func Logger() *slog.Logger { Init(); return global }

// Convenience top-level logging functions.
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// WithSession attaches session identity fields.
func WithSession(l *slog.Logger, sessionID, role string) *slog.Logger {
	return l.With("session_id", sessionID, "role", role)
}

// WithFlow attaches the driver's current coarse phase.
func WithFlow(l *slog.Logger, flowState string) *slog.Logger {
	return l.With("flow_state", flowState)
}

// WithMessage attaches handshake message metadata. ts is the wall-clock
// instant the event was observed, in Unix milliseconds truncated to
// the low 32 bits; callers pass 0 to have the logger stamp the current
// time the same way.
func WithMessage(l *slog.Logger, handState string, msgType int, ts uint32) *slog.Logger {
	if ts == 0 {
		ts = uint32(time.Now().UnixMilli() & 0xFFFFFFFF)
	}
	return l.With("hand_state", handState, "msg_type", msgType, "timestamp", ts)
}

// SubStateTransition logs an inner sub-state-machine move (read or
// write) at Debug -- the driver's level for internal bookkeeping a
// caller doesn't need to see unless it asked for verbose output. A nil
// logger (as used by internal/statem's own unit tests, which drive a
// sub-machine directly without a Driver) is a no-op.
func SubStateTransition(l *slog.Logger, machine, from, to string) {
	if l == nil {
		return
	}
	l.Debug("sub-state transition", "machine", machine, "from", from, "to", to)
}

// Suspend logs a collaborator hook asking the driver to suspend. This
// is not a failure -- drive() will return WouldBlock and the caller is
// expected to retry -- but it is surfaced at Warn rather than Debug
// because a caller that never sees it retry is a bug worth noticing.
func Suspend(l *slog.Logger, op string) {
	if l == nil {
		return
	}
	l.Warn("handshake suspended, awaiting more I/O", "op", op)
}
