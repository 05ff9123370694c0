package stacktrim

// Pruner filters rendered stack trace text, dropping frame lines that match
// none of the allowed keywords and collapsing each dropped run into a single
// "\t... N more" marker.
//
// With no matcher configured nothing ever matches, so every line is kept:
// an unconfigured Pruner is a pass-through.
type Pruner struct {
	matcher FrameMatcher
	src     Source
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithKeywords sets the ordered substring allow-list. Frames containing any
// of the keywords are always kept; the first hit in a section also ends that
// section's preserved leading run.
func WithKeywords(keywords ...string) Option {
	return func(p *Pruner) { p.matcher = Keywords(keywords) }
}

// WithMatcher replaces the keyword allow-list with a custom FrameMatcher.
func WithMatcher(m FrameMatcher) Option {
	return func(p *Pruner) { p.matcher = m }
}

// WithSource attaches a configuration source. It is consulted once per call
// for the pruning flag; without a source pruning is always enabled.
func WithSource(src Source) Option {
	return func(p *Pruner) { p.src = src }
}
