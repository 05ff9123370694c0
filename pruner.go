// Package stacktrim compacts rendered exception stack traces for log output.
//
// It keeps the frames that point at code you care about (an ordered keyword
// allow-list) plus the leading frames that called into that code, and
// collapses every other run of frames into a single "\t... N more" marker,
// the same convention the JVM uses for truncated cause traces. The pruner
// operates on the textual trace grammar, so it works equally on traces
// rendered from Go error chains by this package and on JVM-style traces
// flowing through a log pipeline.
package stacktrim

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single scanned line; trace lines are short, log
// payloads around them may not be.
const maxLineBytes = 1 << 20

// New builds a Pruner from the given options. A Pruner is immutable after
// construction and safe for concurrent use.
func New(opts ...Option) *Pruner {
	p := &Pruner{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// LineSink receives output lines in order.
type LineSink interface {
	OnLine(line string)
}

// LineSinkFunc adapts a function to a LineSink.
type LineSinkFunc func(line string)

func (f LineSinkFunc) OnLine(line string) { f(line) }

// PruneLines applies the pruning pass to an already-split trace and returns
// the compacted lines. The input slice is never modified.
//
// Lines are scanned in order. A header line is always kept and re-arms the
// preserved run for its section. A frame line is kept when it matches the
// allow-list or while the section's preserved run is still open; every other
// frame is dropped and counted into the section's current "\t... N more"
// marker. If pruning is disabled through the configuration source, the input
// is returned unchanged.
func (p *Pruner) PruneLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	if p.pruningDisabled() {
		return append(out, lines...)
	}

	// preserveFrames holds every frame seen before the first allowed frame
	// of a section, so the frames that led into allowed code survive. Each
	// header line re-arms it for the section it introduces.
	preserveFrames := true
	framesOmitted := 0

	for _, line := range lines {
		printThisLine := false
		if IsHeaderLine(line) {
			preserveFrames = true
			printThisLine = true
		} else if p.matcher != nil && p.matcher.MatchFrame(line) {
			preserveFrames = false
			printThisLine = true
		}

		if printThisLine || preserveFrames {
			out = append(out, line)
			framesOmitted = 0
			continue
		}

		framesOmitted++
		if n := len(out); n > 0 && isSummaryLine(out[n-1]) {
			out = out[:n-1]
		}
		out = append(out, summaryLine(framesOmitted))
	}
	return out
}

// Prune scans trace or log text from r and emits the pruned lines to sink.
//
// The call is total: it never reports a failure. A read error ends the scan
// and is recorded as one final output line, after whatever was collected, so
// a partially read trace still reaches the log. The emitted sequence is
// identical to what PruneLines would produce for the same input.
func (p *Pruner) Prune(r io.Reader, sink LineSink) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if p.pruningDisabled() {
		for sc.Scan() {
			sink.OnLine(sc.Text())
		}
		if err := sc.Err(); err != nil {
			sink.OnLine(err.Error())
		}
		return
	}

	var (
		preserveFrames = true
		omitted        = 0  // dropped frames in the current run, marker not yet emitted
		held           = "" // kept line that looks like a marker, emission deferred
		hasHeld        = false
	)

	// A marker line only becomes final when its run ends: the next kept line
	// replaces or flushes it, EOF flushes it. Holding it back keeps the sink
	// append-only while matching PruneLines' replace-last behavior. The same
	// applies to kept input lines that already look like markers; a drop
	// immediately after one replaces it.
	flush := func() {
		if omitted > 0 {
			sink.OnLine(summaryLine(omitted))
			omitted = 0
		}
		if hasHeld {
			sink.OnLine(held)
			hasHeld = false
		}
	}

	for sc.Scan() {
		line := sc.Text()
		printThisLine := false
		if IsHeaderLine(line) {
			preserveFrames = true
			printThisLine = true
		} else if p.matcher != nil && p.matcher.MatchFrame(line) {
			preserveFrames = false
			printThisLine = true
		}

		if printThisLine || preserveFrames {
			flush()
			if isSummaryLine(line) {
				held = line
				hasHeld = true
			} else {
				sink.OnLine(line)
			}
			continue
		}

		omitted++
		hasHeld = false
	}
	flush()
	if err := sc.Err(); err != nil {
		sink.OnLine(err.Error())
	}
}

// PruneTo prunes text from r and writes the output lines to w, one per line.
// Read failures degrade into an output line as in Prune; only write errors
// are returned.
func (p *Pruner) PruneTo(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	var werr error
	p.Prune(r, LineSinkFunc(func(line string) {
		if werr != nil {
			return
		}
		if _, err := bw.WriteString(line); err != nil {
			werr = err
			return
		}
		werr = bw.WriteByte('\n')
	}))
	if werr != nil {
		return werr
	}
	return bw.Flush()
}

// pruningDisabled reads the flag from the attached source. The key is
// consulted on every pruning call so live sources take effect immediately.
func (p *Pruner) pruningDisabled() bool {
	if p.src == nil {
		return false
	}
	v, ok := p.src.Lookup(PruningEnabledKey)
	return ok && v == "true"
}
