package style

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Colors, initialized to dark theme defaults. Updated via SetTheme().
var (
	Primary   color.Color = lipgloss.Color("#7C3AED")
	Secondary color.Color = lipgloss.Color("#06B6D4")
	Success   color.Color = lipgloss.Color("#22C55E")
	Warning   color.Color = lipgloss.Color("#F59E0B")
	Orange    color.Color = lipgloss.Color("#F97316")
	Error     color.Color = lipgloss.Color("#EF4444")
	Muted     color.Color = lipgloss.Color("#6B7280")
	Dim       color.Color = lipgloss.Color("#374151")
	Border    color.Color = lipgloss.Color("#4B5563")

	BadgeTextColor color.Color = lipgloss.Color("#111827")
	StatusBgColor  color.Color = lipgloss.Color("#1F2937")
	TooltipBgColor color.Color = lipgloss.Color("#1F2937")
	FlashBgColor   color.Color = lipgloss.Color("#312E81")

	// Gradient endpoints, violet to cyan on the dark theme
	GradColorA color.Color = lipgloss.Color("#7C3AED")
	GradColorB color.Color = lipgloss.Color("#06B6D4")
)

// Base styles, rebuilt when the theme changes via rebuildStyles().
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style
	Hint      lipgloss.Style

	// Grid
	NameCell  lipgloss.Style
	Clickable lipgloss.Style
	Flash     lipgloss.Style

	// Status line
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	Tooltip     lipgloss.Style

	// Empty content placeholder
	Empty lipgloss.Style

	// Scrollbar
	ScrollbarThumb lipgloss.Style
	ScrollbarTrack lipgloss.Style

	badges map[string]lipgloss.Style
)

func init() {
	rebuildStyles()
}

// SetTheme applies a named theme, updating all color vars and rebuilding styles.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	Primary = t.Primary
	Secondary = t.Secondary
	Success = t.Success
	Warning = t.Warning
	Orange = t.Orange
	Error = t.Error
	Muted = t.Muted
	Dim = t.Dim
	Border = t.Border
	BadgeTextColor = t.BadgeText
	StatusBgColor = t.StatusBg
	TooltipBgColor = t.TooltipBg
	FlashBgColor = t.FlashBg
	GradColorA = t.GradA
	GradColorB = t.GradB
	rebuildStyles()
	return true
}

// AutoTheme returns the theme name matching the terminal background.
func AutoTheme(darkBackground bool) string {
	if darkBackground {
		return "dark"
	}
	return "light"
}

// IsDark returns whether the current theme is dark.
func IsDark() bool {
	return CurrentThemeName != "light"
}

func rebuildStyles() {
	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Hint = lipgloss.NewStyle().Foreground(Muted).Italic(true)

	NameCell = lipgloss.NewStyle()
	Clickable = lipgloss.NewStyle().Foreground(Secondary).Underline(true)
	Flash = lipgloss.NewStyle().Background(FlashBgColor).Bold(true)

	StatusBar = lipgloss.NewStyle().Background(StatusBgColor).Foreground(Muted)
	StatusKey = lipgloss.NewStyle().Background(StatusBgColor).Foreground(Primary).Bold(true)
	StatusValue = lipgloss.NewStyle().Background(StatusBgColor).Foreground(Secondary)
	Tooltip = lipgloss.NewStyle().Background(TooltipBgColor).Foreground(Secondary)

	Empty = lipgloss.NewStyle().Foreground(Muted).Italic(true)

	ScrollbarThumb = lipgloss.NewStyle().Foreground(Primary)
	ScrollbarTrack = lipgloss.NewStyle().Foreground(Dim)

	badge := func(bg color.Color) lipgloss.Style {
		return lipgloss.NewStyle().Background(bg).Foreground(BadgeTextColor)
	}
	badges = map[string]lipgloss.Style{
		"green-background":  badge(Success),
		"yellow-background": badge(Warning),
		"orange-background": badge(Orange),
		"red-background":    badge(Error),
		"gray-background":   badge(Muted),
		"blue-background":   badge(Secondary),
		"green-text":        lipgloss.NewStyle().Foreground(Success),
		"yellow-text":       lipgloss.NewStyle().Foreground(Warning),
		"red-text":          lipgloss.NewStyle().Foreground(Error),
		"gray-text":         lipgloss.NewStyle().Foreground(Muted),
	}
}

// Badge returns the style for a color class. Unknown classes render gray.
func Badge(class string) lipgloss.Style {
	if s, ok := badges[strings.ToLower(class)]; ok {
		return s
	}
	return badges["gray-background"]
}

// KnownClass reports whether class has a dedicated style.
func KnownClass(class string) bool {
	_, ok := badges[strings.ToLower(class)]
	return ok
}

// Title renders a table title with the theme gradient.
func Title(s string) string {
	return GradientTextBold(s, GradColorA, GradColorB)
}
