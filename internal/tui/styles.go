// pattern: Functional Core

package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Styles derives all lipgloss styles from one catppuccin flavor.
type Styles struct {
	flavor catppuccin.Flavor
}

var flavors = map[string]catppuccin.Flavor{
	"latte":     catppuccin.Latte,
	"frappe":    catppuccin.Frappe,
	"macchiato": catppuccin.Macchiato,
	"mocha":     catppuccin.Mocha,
}

// NewStyles builds the style set for a theme name, falling back to mocha.
func NewStyles(themeName string) *Styles {
	flavor, ok := flavors[themeName]
	if !ok {
		flavor = catppuccin.Mocha
	}
	return &Styles{flavor: flavor}
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(s.color(s.flavor.Mauve()))
}

func (s *Styles) SubtitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Subtext0()))
}

// HelpStyle carries a top margin; it is only for the bottom hint line.
func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay0())).MarginTop(1)
}

// DimStyle is the margin-free counterpart used inside the log pane.
func (s *Styles) DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Teal()))
}

func (s *Styles) WarnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Yellow()))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(s.color(s.flavor.Red()))
}

func (s *Styles) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Surface1()))
}
