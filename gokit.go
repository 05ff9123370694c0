package stacktrim

import (
	"strings"

	"github.com/go-kit/log"
)

// PrunedLogger wraps next so that error values appearing in key/value pairs
// are replaced with their pruned trace rendering, one line per trace line.
// Keys and non-error values pass through untouched.
func PrunedLogger(next log.Logger, p *Pruner) log.Logger {
	return &prunedLogger{next: next, pruner: p}
}

type prunedLogger struct {
	next   log.Logger
	pruner *Pruner
}

// Log implements the log.Logger interface. Values sit at odd indices; the
// caller's slice is never mutated.
func (l *prunedLogger) Log(keyvals ...interface{}) error {
	var out []interface{}
	for i := 1; i < len(keyvals); i += 2 {
		err, ok := keyvals[i].(error)
		if !ok || err == nil {
			continue
		}
		if out == nil {
			out = make([]interface{}, len(keyvals))
			copy(out, keyvals)
		}
		out[i] = strings.Join(l.pruner.RenderError(err), "\n")
	}
	if out == nil {
		return l.next.Log(keyvals...)
	}
	return l.next.Log(out...)
}
