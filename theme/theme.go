package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"go-midiparse/midi"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Channel  rune // ● channel voice
	SysEx    rune // ◆ system exclusive
	Common   rune // ▲ system common
	Realtime rune // · realtime
	Unknown  rune // ? anything else
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Channel:  '●',
			SysEx:    '◆',
			Common:   '▲',
			Realtime: '·',
			Unknown:  '?',
		},
	}
}

// Configure switches color output on or off for every style rendered after it.
func Configure(color bool) {
	if color {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted    = 0.2 // purple-magenta
	RoleAccent   = 0.5 // vivid magenta
	RoleRealtime = 0.6 // rose pink
	RoleCommon   = 0.7 // soft red
	RoleWarning  = 0.8 // orange
	RoleSysEx    = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// CategoryColor returns the color used for a message category.
func (t *Theme) CategoryColor(c midi.Category) lipgloss.Color {
	switch c {
	case midi.CategoryChannel:
		return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
	case midi.CategorySysEx:
		return rgbToLipgloss(t.Palette.Lookup(RoleSysEx))
	case midi.CategoryCommon:
		return rgbToLipgloss(t.Palette.Lookup(RoleCommon))
	case midi.CategoryRealtime:
		return rgbToLipgloss(t.Palette.Lookup(RoleRealtime))
	}
	return t.Warning()
}

// Symbol returns the marker rune for a message category.
func (t *Theme) Symbol(c midi.Category) rune {
	switch c {
	case midi.CategoryChannel:
		return t.Symbols.Channel
	case midi.CategorySysEx:
		return t.Symbols.SysEx
	case midi.CategoryCommon:
		return t.Symbols.Common
	case midi.CategoryRealtime:
		return t.Symbols.Realtime
	}
	return t.Symbols.Unknown
}

// Label renders a message type name in its category style.
func (t *Theme) Label(typ midi.Type) string {
	c := typ.Category()
	return lipgloss.NewStyle().
		Foreground(t.CategoryColor(c)).
		Bold(c == midi.CategoryChannel).
		Render(fmt.Sprintf("%c %-14s", t.Symbol(c), typ))
}

// Dim renders s in the muted color.
func (t *Theme) Dim(s string) string {
	return lipgloss.NewStyle().Foreground(t.Muted()).Render(s)
}

// Warn renders s in the warning color.
func (t *Theme) Warn(s string) string {
	return lipgloss.NewStyle().Foreground(t.Warning()).Render(s)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
