package botcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/kavisanghavi/logline/internal/daylog"
)

type commandKind int

const (
	cmdLog commandKind = iota
	cmdUndo
	cmdSearch
	cmdWeek
	cmdHelp
	cmdRemind
	cmdRemindOff
)

type command struct {
	Kind commandKind

	// Keyword for cmdSearch, raw entry text for cmdLog, "HH:MM" for cmdRemind.
	Arg string
}

// parseCommand maps a DM to a bot command. The first word decides; anything
// unrecognized is treated as entry text to log.
func parseCommand(text string) command {
	text = strings.TrimSpace(text)
	head, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(head) {
	case "undo":
		if rest == "" {
			return command{Kind: cmdUndo}
		}
	case "search", "find":
		if rest != "" {
			return command{Kind: cmdSearch, Arg: rest}
		}
	case "week", "weekly":
		if rest == "" {
			return command{Kind: cmdWeek}
		}
	case "help", "?":
		if rest == "" {
			return command{Kind: cmdHelp}
		}
	case "remind":
		switch {
		case strings.EqualFold(rest, "off"):
			return command{Kind: cmdRemindOff}
		case rest != "":
			return command{Kind: cmdRemind, Arg: rest}
		}
	}
	return command{Kind: cmdLog, Arg: text}
}

const helpText = `I keep your work log in your document. Message me:
- anything, to log it under today's heading
- ` + "`undo`" + ` to remove the last entry
- ` + "`search <keyword>`" + ` to find entries
- ` + "`week`" + ` for the last seven days
- ` + "`remind HH:MM`" + ` for a daily reminder, ` + "`remind off`" + ` to stop`

func formatAppendReply(res daylog.AppendResult) string {
	n := len(res.Lines)
	if n == 1 {
		return "Logged: " + res.Lines[0]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Logged %d entries:\n", n)
	for _, line := range res.Lines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUndoReply(rec daylog.Record, ok bool) string {
	if !ok {
		return "Nothing to undo."
	}
	return "Removed: " + rec.Text
}

func formatRecords(records []daylog.Record, empty string) string {
	if len(records) == 0 {
		return empty
	}
	var b strings.Builder
	var day time.Time
	for _, rec := range records {
		if !rec.Day.Equal(day) {
			day = rec.Day
			b.WriteString("*")
			b.WriteString(daylog.HeadingText(rec.Day))
			b.WriteString("*\n")
		}
		b.WriteString("- ")
		b.WriteString(rec.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
