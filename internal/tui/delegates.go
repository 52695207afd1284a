// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"arbor/internal/git"
)

// worktreeItem wraps a worktree for display in a list.
type worktreeItem struct {
	worktree git.Worktree
}

// Title returns the worktree name for display.
func (i worktreeItem) Title() string {
	return i.worktree.Name()
}

// Description returns worktree details for display.
func (i worktreeItem) Description() string {
	parts := []string{i.worktree.Branch}
	if i.worktree.BaseBranch != "" {
		parts = append(parts, "from "+i.worktree.BaseBranch)
	}
	if i.worktree.IsLocked {
		parts = append(parts, "locked")
	}
	if i.worktree.IsPrunable {
		parts = append(parts, "prunable")
	}
	return strings.Join(parts, " | ")
}

// FilterValue returns the value to filter on.
func (i worktreeItem) FilterValue() string {
	return i.worktree.Name()
}

// statusReader provides cached per-worktree statuses for rendering.
type statusReader interface {
	Status(worktreePath string) (git.Status, bool)
}

// worktreeDelegate handles rendering of worktree items in a list.
type worktreeDelegate struct {
	styles   *Styles
	statuses statusReader
}

// newWorktreeDelegate creates a new worktree delegate with the given styles.
func newWorktreeDelegate(styles *Styles, statuses statusReader) worktreeDelegate {
	return worktreeDelegate{styles: styles, statuses: statuses}
}

// Height returns the height of a single item.
func (d worktreeDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d worktreeDelegate) Spacing() int {
	return 1
}

// Update handles item-specific updates.
func (d worktreeDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single worktree item: name plus branch detail on the
// first line, the status summary on the second.
func (d worktreeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	wi, ok := item.(worktreeItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Text().Hex))
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Subtext0().Hex))

	if isSelected {
		titleStyle = titleStyle.
			Bold(true).
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		descStyle = descStyle.
			Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
	}

	indicator := "  "
	if isSelected {
		indicator = lipgloss.NewStyle().
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex)).
			Render("▸ ")
	}

	summary, bullet := d.summaryFor(wi.worktree)
	title := titleStyle.Render(wi.worktree.Name())
	detail := descStyle.Render(wi.Description())
	summaryLine := descStyle.Render(summary)

	_, _ = fmt.Fprintf(w, "%s%s %s  %s\n    %s", indicator, bullet, title, detail, summaryLine)
}

// summaryFor derives the second display line and the colored state bullet.
func (d worktreeDelegate) summaryFor(wt git.Worktree) (string, string) {
	var color lipgloss.Color
	summary := ""

	switch {
	case wt.IsPrunable:
		color = lipgloss.Color(d.styles.flavor.Red().Hex)
		summary = "missing on disk"
	default:
		st, ok := d.statuses.Status(wt.Path)
		if !ok {
			color = lipgloss.Color(d.styles.flavor.Overlay0().Hex)
			summary = "…"
			break
		}
		summary = st.Summary()
		if st.IsDirty || st.Ahead > 0 || st.Behind > 0 {
			color = lipgloss.Color(d.styles.flavor.Yellow().Hex)
		} else {
			color = lipgloss.Color(d.styles.flavor.Green().Hex)
		}
	}

	bullet := lipgloss.NewStyle().Foreground(color).Render("●")
	return summary, bullet
}

// toListItems converts worktrees to list items.
func toListItems(worktrees []git.Worktree) []list.Item {
	items := make([]list.Item, len(worktrees))
	for i, wt := range worktrees {
		items[i] = worktreeItem{worktree: wt}
	}
	return items
}
