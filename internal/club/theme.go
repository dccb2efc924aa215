package club

// Theme is the palette a club's screens and printouts use.
type Theme struct {
	Key        string
	Background string
	Button     string
	Hover      string
	Text       string
	SubText    string
	IconBg     string
	IconText   string
	Border     string
	Accent     string // hex, used by print output
}

func palette(key, accent string) Theme {
	return Theme{
		Key:        key,
		Background: "bg-" + key + "-900",
		Button:     "bg-" + key + "-600",
		Hover:      "hover:bg-" + key + "-700",
		Text:       "text-" + key + "-600",
		SubText:    "text-" + key + "-200",
		IconBg:     "bg-" + key + "-100",
		IconText:   "text-" + key + "-600",
		Border:     "border-" + key + "-400",
		Accent:     accent,
	}
}

var (
	fallbackTheme = palette("slate", "#334155")

	themes = map[string]Theme{
		"blue":    palette("blue", "#3B82F6"),
		"amber":   palette("amber", "#F59E0B"),
		"emerald": palette("emerald", "#10B981"),
		"violet":  palette("violet", "#8B5CF6"),
	}
)

// ThemeFor is total: any name outside the catalogue gets the slate theme.
func ThemeFor(name string) Theme {
	if t, ok := themes[Lookup(name).ColorClass]; ok {
		return t
	}
	return fallbackTheme
}
