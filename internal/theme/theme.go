// Package theme holds the light and dark palettes and the lipgloss styles
// built from them. A Theme is a plain value handed to whoever renders;
// there is no package-level current theme.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Scheme string

const (
	Light Scheme = "light"
	Dark  Scheme = "dark"
)

// Palette bundles the colors of one scheme.
type Palette struct {
	Text, Background, Icon, Button, Border lipgloss.Color
	Input                                  lipgloss.Color
}

var palettes = map[Scheme]Palette{
	Light: {
		Text:       "#000000",
		Background: "#FFFFFF",
		Icon:       "#000000",
		Button:     "#4169E1", // royalblue
		Border:     "#E0E0E0",
		Input:      "#F5F5F5",
	},
	Dark: {
		Text:       "#FFFFFF",
		Background: "#000000",
		Icon:       "#FF0000",
		Button:     "#FFFFFF",
		Border:     "#333333",
		Input:      "#1A1A1A",
	},
}

// Theme bundles palette + styles + symbols.
type Theme struct {
	Scheme  Scheme
	Palette Palette

	Title, Success, Pending, Accent, Muted, Error lipgloss.Style
	Selected, Done, Help, Frame, InputFrame       lipgloss.Style

	BoxChecked, BoxUnchecked string
	SymDone, SymPending      string
	Icon                     string // sun or moon, shown next to the input
}

// ParseScheme accepts light, dark or auto. Auto follows the terminal
// background.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	case "", "auto":
		if lipgloss.HasDarkBackground() {
			return Dark, nil
		}
		return Light, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// New builds the theme for scheme. Unknown schemes fall back to light.
func New(scheme Scheme) Theme {
	p, ok := palettes[scheme]
	if !ok {
		scheme, p = Light, palettes[Light]
	}
	t := Theme{
		Scheme:  scheme,
		Palette: p,

		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Accent:  lipgloss.NewStyle().Foreground(p.Button),
		Muted:   lipgloss.NewStyle().Faint(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		InputFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Background(p.Input).
			Padding(0, 1),

		BoxChecked:   "☑",
		BoxUnchecked: "☐",
		SymDone:      "✔",
		SymPending:   "•",
		Icon:         "☀",
	}
	if scheme == Dark {
		t.Icon = "☾"
	}
	return t
}

// Toggle returns the opposite scheme's theme.
func (t Theme) Toggle() Theme {
	if t.Scheme == Dark {
		return New(Light)
	}
	return New(Dark)
}
