package stacktrim

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// stackTracer is the capture convention popularized by github.com/pkg/errors.
// Any error in the chain exposing it contributes a frame section.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Render formats err and its cause chain into the canonical trace grammar.
//
// The first line is err.Error(). Each error in the chain that carries a
// captured stack contributes its frames as tab-indented lines; sections
// after the first are introduced by a "caused by: " header holding the
// message from that error inward. Frames an inner section shares with the
// end of the section above it are elided into one "\t... N more" line, the
// way the JVM elides common cause frames.
//
// Errors without any captured stack render as the single header line.
func Render(err error) []string {
	if err == nil {
		return nil
	}
	lines := []string{err.Error()}

	var prev []string
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		st, ok := e.(stackTracer)
		if !ok {
			continue
		}
		frames := frameLines(st.StackTrace())
		if prev == nil {
			lines = append(lines, frames...)
		} else {
			lines = append(lines, causeHeader(e))
			lines = appendElided(lines, frames, prev)
		}
		prev = frames
	}
	return lines
}

// RenderError renders err and immediately prunes the result. This is the
// whole pipeline in one call: what you would hand to a log appender.
func (p *Pruner) RenderError(err error) []string {
	if err == nil {
		return nil
	}
	return p.PruneLines(Render(err))
}

// causeHeader renders the header for a cause section. The layer's message
// usually embeds the messages of everything it wraps ("outer: inner"); the
// inner part is trimmed off so each section shows only what its layer added,
// the way per-throwable cause messages read in JVM traces.
func causeHeader(e error) string {
	msg := e.Error()
	for c := stderrors.Unwrap(e); c != nil; c = stderrors.Unwrap(c) {
		if suffix := ": " + c.Error(); strings.HasSuffix(msg, suffix) {
			msg = strings.TrimSuffix(msg, suffix)
			break
		}
	}
	if msg == "" {
		return strings.TrimSuffix(causedBy, " ")
	}
	return causedBy + msg
}

// appendElided appends frames to lines, replacing the trailing frames that
// are identical to the end of prev with a single "\t... N more" line.
func appendElided(lines, frames, prev []string) []string {
	shared := 0
	for shared < len(frames) && shared < len(prev) {
		if frames[len(frames)-1-shared] != prev[len(prev)-1-shared] {
			break
		}
		shared++
	}
	lines = append(lines, frames[:len(frames)-shared]...)
	if shared > 0 {
		lines = append(lines, summaryLine(shared))
	}
	return lines
}

func frameLines(st pkgerrors.StackTrace) []string {
	out := make([]string, 0, len(st))
	for _, f := range st {
		out = append(out, frameLine(f))
	}
	return out
}

// frameLine renders one captured frame as "\tat func(file:line)". The
// program counter is the return address, hence the -1 before resolving it.
func frameLine(f pkgerrors.Frame) string {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return tab + "at unknown"
	}
	file, line := fn.FileLine(pc)
	return fmt.Sprintf("%sat %s(%s:%d)", tab, fn.Name(), file, line)
}
