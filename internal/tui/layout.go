// pattern: Functional Core

package tui

// Region is a rectangular area of the terminal, in cells.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Layout holds the computed regions for all UI components.
type Layout struct {
	Header    Region // Title + repository line
	Content   Region // Worktree list or create form
	Separator Region // Divider above the log pane, zero when closed
	Logs      Region // Log pane, zero when closed
	StatusBar Region // Status / error / confirm line
}

// Fixed chrome heights.
const (
	headerHeight    = 2
	statusBarHeight = 1
	helpHeight      = 2
	separatorHeight = 1

	minContentHeight = 4
	logPaneShare     = 0.4
)

// ComputeLayout divides the terminal top to bottom. The area left after the
// fixed chrome goes to the content, or splits with the log pane when open.
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	flexible := height - headerHeight - statusBarHeight - helpHeight
	if flexible < minContentHeight {
		flexible = minContentHeight
	}

	logsHeight := 0
	if logPanelOpen {
		logsHeight = int(float64(flexible) * logPaneShare)
		flexible -= logsHeight + separatorHeight
	}

	var l Layout
	y := 0
	place := func(h int) Region {
		r := Region{X: 0, Y: y, Width: width, Height: h}
		y += h
		return r
	}

	l.Header = place(headerHeight)
	l.Content = place(flexible)
	if logPanelOpen {
		l.Separator = place(separatorHeight)
		l.Logs = place(logsHeight)
	}
	l.StatusBar = place(statusBarHeight)
	return l
}

// ContentListHeight is the list height inside the content region after the
// list widget's own chrome.
func (l Layout) ContentListHeight() int {
	h := l.Content.Height - 2
	if h < 1 {
		h = 1
	}
	return h
}
