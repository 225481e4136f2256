package ui

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/workflow"
)

// FormatToolDescription generates a user-friendly description from tool args
func FormatToolDescription(name string, args map[string]any) string {
	switch name {
	case "list_files":
		if dir, ok := args["directory"].(string); ok && dir != "" {
			return fmt.Sprintf("ListFiles %s", dir)
		}
		return "ListFiles ."
	case "read_file":
		if path, ok := args["file_path"].(string); ok {
			return fmt.Sprintf("ReadFile %s", path)
		}
	case "write_file":
		if path, ok := args["file_path"].(string); ok {
			return fmt.Sprintf("WriteFile %s", path)
		}
	case "run_script":
		if path, ok := args["file_path"].(string); ok {
			parts := []string{path}
			switch a := args["args"].(type) {
			case []any:
				for _, v := range a {
					parts = append(parts, fmt.Sprint(v))
				}
			case []string:
				parts = append(parts, a...)
			case string:
				parts = append(parts, a)
			}
			return fmt.Sprintf("RunScript '%s'", strings.Join(parts, " "))
		}
	}
	return name
}

// RenderEvent formats one agent workflow event as a status line. Text and
// done events render as the empty string; the final answer is printed separately.
func RenderEvent(e workflow.Event, styled bool) string {
	style := func(s func(...string) string, text string) string {
		if styled {
			return s(text)
		}
		return text
	}

	switch ev := e.(type) {
	case workflow.ThinkingEvent:
		return style(StatusThinkingStyle.Render, fmt.Sprintf("… Thinking (round %d)", ev.Round))
	case workflow.ToolStartEvent:
		return style(StatusExecutingStyle.Render, "→ "+FormatToolDescription(ev.ToolName, ev.Args))
	case workflow.ToolEndEvent:
		if ev.Kind == tool.KindNone {
			return style(StatusDoneStyle.Render, "✔ "+ev.ToolName)
		}
		return style(StatusFailedStyle.Render, fmt.Sprintf("✗ %s (%s): %s", ev.ToolName, ev.Kind, firstLine(ev.Content)))
	default:
		return ""
	}
}

// PrintEvents drains events until the channel closes or a DoneEvent arrives.
// With verbose off only tool failures are printed.
func (p *Printer) PrintEvents(events <-chan workflow.Event, verbose bool) {
	for e := range events {
		if _, ok := e.(workflow.DoneEvent); ok {
			return
		}
		if !verbose {
			end, ok := e.(workflow.ToolEndEvent)
			if !ok || end.Kind == tool.KindNone {
				continue
			}
		}
		if line := RenderEvent(e, p.styled); line != "" {
			fmt.Fprintln(p.out, line)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
