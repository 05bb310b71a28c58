package theme

import "github.com/thenoetrevino/ticks/internal/config"

// Colors holds the current theme colors, initialized by Init
var (
	Highlight string
	Completed string
	Selected  string
	Subtle    string
	Normal    string
	InfoFg    string
	InfoBg    string
	WarningFg string
	WarningBg string
	ErrorFg   string
	ErrorBg   string
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes the theme colors from the given color scheme.
// Missing colors fall back to the scheme's preset.
func Init(colors config.ColorScheme) {
	colors.ApplyDefaults()

	Highlight = colors.Accent
	Completed = colors.Completed
	Selected = colors.Selected
	Subtle = colors.Subtle
	Normal = colors.Normal
	InfoFg = colors.InfoFg
	InfoBg = colors.InfoBg
	WarningFg = colors.WarningFg
	WarningBg = colors.WarningBg
	ErrorFg = colors.ErrorFg
	ErrorBg = colors.ErrorBg
}
