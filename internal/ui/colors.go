package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/audiovault/internal/models"
)

var (
	darkPalette  = NewPalette("#7D56F4", "#04B575", "#FF5F5F", "#FFA500", "#626262")
	lightPalette = NewPalette("#5A3FC0", "#027A4B", "#C00000", "#B36B00", "#8A8A8A")
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	muted lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		muted: NewStyle(h),
	}
}

// PaletteFor returns the stylesheet for theme.
func PaletteFor(theme models.Theme) *Palette {
	if theme == models.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// As renders s in fg.
func (p *Palette) As(s string, fg lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(fg).Render(s)
}

// On renders s over bg.
func (p *Palette) On(s string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().Background(bg).Render(s)
}

// Status renders a stage status in its colour.
func (p *Palette) Status(status models.Status) string {
	label := string(status.Normalize())
	switch status.Normalize() {
	case models.StatusComplete:
		return p.ok.Render(label)
	case models.StatusError:
		return p.err.Render(label)
	case models.StatusActive:
		return p.warn.Render(label)
	default:
		return p.muted.Render(label)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
