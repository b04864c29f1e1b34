package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetEnabled turns ANSI colours on or off for every helper in this package.
// fatih/color already disables them when stdout is not a terminal.
func SetEnabled(enabled bool) {
	if !enabled {
		color.NoColor = true
	}
}

// PrintLogo renders the colored pertloom logo to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	nodes := color.New(color.FgYellow)
	arrows := color.New(color.FgCyan, color.Faint)
	sep := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	nodes.Fprintln(w, "   |  0 --> 1 --> 2 --> 3     |")
	arrows.Fprintln(w, "   |         \\-> 4 ---/       |")
	sep.Fprintln(w, "   |==========================|")
	brand.Fprintln(w, "   |  P  E  R  T  L  O  O  M  |")
	sep.Fprintln(w, "   |==========================|")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Critical path and PERT analysis\n", Dim("⚡"))
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskPrefix returns a colored [task-id] prefix string.
// Each task ID gets a distinct color from the palette.
func TaskPrefix(taskID string) string {
	c := taskColors[taskColorIndex(taskID)]
	return Dim("[") + c(taskID) + Dim("]")
}

// TaskID returns the task id in its palette colour.
func TaskID(taskID string) string {
	return taskColors[taskColorIndex(taskID)](taskID)
}

// CriticalMarker returns the lightning marker for critical rows, blank otherwise.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Slack colours a slack value: red at zero, yellow when tight, green otherwise.
func Slack(slack int) string {
	s := strconv.Itoa(slack)
	switch {
	case slack == 0:
		return BoldRed(s)
	case slack <= 2:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// Verdict returns a coloured pass/fail word.
func Verdict(ok bool) string {
	if ok {
		return BoldGreen("✓ agree")
	}
	return BoldRed("✗ mismatch")
}
