package stacktrim

import (
	"log/slog"
	"strings"
)

// Attr renders err through the pruner and returns it as a string attribute,
// one line per trace line. A nil err yields an empty Attr, which handlers
// discard.
func (p *Pruner) Attr(key string, err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(key, strings.Join(p.RenderError(err), "\n"))
}

// ReplaceAttr rewrites error-valued attributes into pruned traces. Wire it
// into a handler to prune every error an application logs:
//
//	slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		ReplaceAttr: pruner.ReplaceAttr,
//	}))
//
// Attributes that do not carry an error pass through unchanged.
func (p *Pruner) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	err, ok := a.Value.Any().(error)
	if !ok || err == nil {
		return a
	}
	a.Value = slog.StringValue(strings.Join(p.RenderError(err), "\n"))
	return a
}
