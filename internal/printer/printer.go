package printer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/wsharp07/lucidboard/pkg/board"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed, color.Bold)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgMagenta)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Printf("⚠️  %s", msg)
	} else {
		yellow.Print(msg)
	}
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	// Print title in red to stderr
	red.Fprintf(os.Stderr, "%s\n\n", title)

	// Print explanation
	fmt.Fprintf(os.Stderr, "%s\n", explanation)

	// Print suggestions
	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(os.Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(os.Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Event prints one board event as a single colored line, the shape used by
// the watch command.
func Event(ev *board.Event) {
	magenta.Printf("[%s] ", ev.Kind)
	fmt.Println(EventSummary(ev))
}

// EventSummary renders the human-readable body of a board event.
func EventSummary(ev *board.Event) string {
	switch ev.Kind {
	case board.EventMoveCards:
		parts := make([]string, 0, len(ev.Columns))
		for id, slots := range ev.Columns {
			parts = append(parts, fmt.Sprintf("column %d -> %s", id, formatSlots(slots)))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	case board.EventCombineCards:
		return fmt.Sprintf("card %d combined; column %d -> %s",
			ev.Card.ID, ev.SourceColumn, formatSlots(ev.SourceMap))
	case board.EventFlipCard:
		return fmt.Sprintf("card %d now top of pile", ev.CardID)
	case board.EventVaporize:
		return fmt.Sprintf("card %d vaporized", ev.CardID)
	case board.EventTimerStart:
		return fmt.Sprintf("timer started: %ds", ev.Seconds)
	case board.EventCardVote:
		return fmt.Sprintf("card %d has %d votes", ev.CardID, ev.Votes)
	case board.EventCardCreated, board.EventCardUpdated:
		return fmt.Sprintf("card %d: %q", ev.Card.ID, ev.Card.Content)
	case board.EventBoardCreated, board.EventBoardUpdated:
		return fmt.Sprintf("board %d settings changed", ev.Board)
	default:
		return string(ev.Kind)
	}
}

// formatSlots renders an identifier arrangement like [1 2|3|4].
func formatSlots(slots [][]int64) string {
	out := make([]string, len(slots))
	for i, slot := range slots {
		ids := make([]string, len(slot))
		for j, id := range slot {
			ids[j] = fmt.Sprintf("%d", id)
		}
		out[i] = strings.Join(ids, " ")
	}
	return "[" + strings.Join(out, "|") + "]"
}
