package stacktrim

import (
	"fmt"
	"strings"
)

// Line grammar shared by the pruner and the renderer: a header line
// introduces an exception or a cause section and has no leading tab; a frame
// line is a single call-stack entry and starts with a tab.

const (
	tab      = "\t"
	ellipsis = "\t..."
	causedBy = "caused by: "
)

// IsFrameLine reports whether line is a stack frame entry.
func IsFrameLine(line string) bool {
	return strings.HasPrefix(line, tab)
}

// IsHeaderLine reports whether line introduces an exception or a cause
// section. Every line that is not a frame line is a header line.
func IsHeaderLine(line string) bool {
	return !IsFrameLine(line)
}

// isSummaryLine matches both markers this package writes and the
// "\t... N more" lines JVM-style traces already carry.
func isSummaryLine(line string) bool {
	return strings.Contains(line, ellipsis)
}

func summaryLine(omitted int) string {
	return fmt.Sprintf("%s %d more", ellipsis, omitted)
}
