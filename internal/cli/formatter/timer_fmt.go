package formatter

import (
	"strings"

	"github.com/alexanderramin/worktimer/internal/engine"
)

// Action is one control shown under the timer.
type Action struct {
	Key     string
	Label   string
	Enabled bool
}

// Actions lists the session controls for v in display order.
func Actions(v engine.View) []Action {
	return []Action{
		{Key: "s", Label: "start", Enabled: v.CanStart},
		{Key: "p", Label: "pause", Enabled: v.CanPause},
		{Key: "r", Label: "resume", Enabled: v.CanResume},
		{Key: "e", Label: "end", Enabled: v.CanEnd},
	}
}

// FormatTimer renders the timer box for a view.
func FormatTimer(v engine.View) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(FormatElapsed(v.ElapsedSeconds)))
	b.WriteString("  ")
	b.WriteString(StatusBadge(v.Status))
	if v.Provisional {
		b.WriteString("  ")
		b.WriteString(Dim("(local estimate)"))
	}
	b.WriteString("\n")

	if v.SessionID != "" {
		b.WriteString(Dim("session " + v.SessionID))
		b.WriteString("\n")
	}
	if v.LoadErr != nil {
		b.WriteString(Warn("offline: " + v.LoadErr.Error()))
		b.WriteString("\n")
	}

	return RenderBox("Work day", strings.TrimRight(b.String(), "\n"))
}

// FormatControls renders the key hints, dimming disabled actions.
func FormatControls(v engine.View) string {
	parts := make([]string, 0, 5)
	for _, a := range Actions(v) {
		text := "[" + a.Key + "] " + a.Label
		if a.Enabled {
			parts = append(parts, StyleFg.Render(text))
		} else {
			parts = append(parts, Dim(text))
		}
	}
	parts = append(parts, StyleFg.Render("[q] quit"))
	if v.Busy {
		parts = append(parts, StyleYellow.Render("working…"))
	}
	return strings.Join(parts, "  ")
}
