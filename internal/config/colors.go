package config

// ColorScheme defines the configurable colors
type ColorScheme struct {
	// Preset name ("default" or "monochrome")
	Preset string `yaml:"preset"`

	Accent    string `yaml:"accent"`
	Completed string `yaml:"completed"`
	Selected  string `yaml:"selected"`
	Subtle    string `yaml:"subtle"`
	Normal    string `yaml:"normal"`

	// Notification colors (foreground/background pairs)
	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// DefaultColorScheme returns the default color scheme (purple theme)
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Preset:    "default",
		Accent:    "#874BFD",
		Completed: "#5FD75F",
		Selected:  "#D75FD7",
		Subtle:    "#585858",
		Normal:    "#D0D0D0",
		InfoFg:    "#00AFFF",
		InfoBg:    "#00005F",
		WarningFg: "#FFD700",
		WarningBg: "#875F00",
		ErrorFg:   "#FF0000",
		ErrorBg:   "#5F0000",
	}
}

// MonochromeColorScheme returns a black and white color scheme
func MonochromeColorScheme() ColorScheme {
	return ColorScheme{
		Preset:    "monochrome",
		Accent:    "#FFFFFF",
		Completed: "#BCBCBC",
		Selected:  "#FFFFFF",
		Subtle:    "#767676",
		Normal:    "#D0D0D0",
		InfoFg:    "#FFFFFF",
		InfoBg:    "#303030",
		WarningFg: "#FFFFFF",
		WarningBg: "#4E4E4E",
		ErrorFg:   "#FFFFFF",
		ErrorBg:   "#000000",
	}
}

// presetColorScheme returns a preset by name, the default for unknown names
func presetColorScheme(name string) ColorScheme {
	if name == "monochrome" {
		return MonochromeColorScheme()
	}
	return DefaultColorScheme()
}

// ApplyDefaults fills in missing colors from the selected preset
func (c *ColorScheme) ApplyDefaults() {
	preset := presetColorScheme(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	fill := func(target *string, def string) {
		if *target == "" {
			*target = def
		}
	}
	fill(&c.Accent, preset.Accent)
	fill(&c.Completed, preset.Completed)
	fill(&c.Selected, preset.Selected)
	fill(&c.Subtle, preset.Subtle)
	fill(&c.Normal, preset.Normal)
	fill(&c.InfoFg, preset.InfoFg)
	fill(&c.InfoBg, preset.InfoBg)
	fill(&c.WarningFg, preset.WarningFg)
	fill(&c.WarningBg, preset.WarningBg)
	fill(&c.ErrorFg, preset.ErrorFg)
	fill(&c.ErrorBg, preset.ErrorBg)
}
