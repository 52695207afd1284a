// pattern: Functional Core

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.formOpen {
		b.WriteString(m.renderForm(layout.Content))
	} else {
		b.WriteString(m.worktreeList.View())
	}
	b.WriteString("\n")

	if m.logPanelOpen {
		b.WriteString(m.renderSeparator(layout.Separator.Width))
		b.WriteString("\n")
		b.WriteString(m.renderLogs(layout.Logs))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the title and the selected repository line.
func (m Model) renderHeader() string {
	title := m.styles.TitleStyle().Render("arbor")

	repo := "no repository selected"
	if m.snapshot.Selected != nil {
		repo = m.snapshot.Selected.Name
		if len(m.snapshot.Repositories) > 1 {
			repo = fmt.Sprintf("%s (%d tracked, tab to switch)", repo, len(m.snapshot.Repositories))
		}
	}
	if m.snapshot.IsLoading {
		repo += " · refreshing"
	}

	return title + "\n" + m.styles.SubtitleStyle().Render(repo)
}

// renderForm renders the worktree creation form in place of the list.
func (m Model) renderForm(region Region) string {
	label := func(field FormField, name, value string) string {
		cursor := "  "
		if m.formField == field {
			cursor = m.styles.AccentStyle().Render("> ")
		}
		if m.formField == field {
			value += "▏"
		}
		return fmt.Sprintf("%s%-8s %s", cursor, name, value)
	}

	lines := []string{
		m.styles.TitleStyle().Render("New worktree"),
		"",
		label(FieldName, "name", m.formName),
		label(FieldBranch, "branch", m.formBranch),
		label(FieldBase, "base", m.formBase),
		"",
		m.styles.DimStyle().Render("enter create · tab next field · esc cancel"),
	}
	if m.formError != "" {
		lines = append(lines, m.styles.ErrorStyle().Render(m.formError))
	}

	content := strings.Join(lines, "\n")
	return m.styles.BorderStyle().Width(region.Width - 4).Render(content)
}

// renderSeparator renders the line between the list and the log panel.
func (m Model) renderSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return m.styles.BorderStyle().Render(strings.Repeat("─", width))
}

// renderLogs renders the tail of the log entries channel.
func (m Model) renderLogs(region Region) string {
	visible := region.Height
	if visible < 1 {
		visible = 1
	}

	entries := m.entries
	if len(entries) > visible {
		entries = entries[len(entries)-visible:]
	}

	lines := make([]string, 0, visible)
	for _, e := range entries {
		line := fmt.Sprintf("%s [%s] %s", e.Timestamp.Format("15:04:05"), e.Scope, e.Message)
		if e.Level == "ERROR" || e.Level == "WARN" {
			line = m.styles.WarnStyle().Render(line)
		} else {
			line = m.styles.DimStyle().Render(line)
		}
		lines = append(lines, truncate(line, region.Width))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// renderStatusBar renders the confirm prompt, the last error, or the
// last action status, in that priority order.
func (m Model) renderStatusBar() string {
	switch {
	case m.confirm != nil:
		return m.styles.WarnStyle().Render(m.confirm.prompt + " [y/n]")
	case m.snapshot.HasError:
		return m.styles.ErrorStyle().Render(m.snapshot.LastError + " (x to dismiss)")
	case m.status != "":
		return m.styles.InfoStyle().Render(m.status)
	default:
		return ""
	}
}

// renderHelp renders the key hints.
func (m Model) renderHelp() string {
	if m.formOpen {
		return m.styles.HelpStyle().Render("enter create · esc cancel")
	}
	const hints = "n new · d remove · c complete · p push · R pr · L lock · P prune · r refresh · e edit · o reveal · t term · g logs · q quit"
	return m.styles.HelpStyle().Render(hints)
}

// truncate cuts a rendered line to at most width cells.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}
