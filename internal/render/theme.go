package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(raw string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return ThemeAuto, nil
	case ThemeAuto, ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want auto, light or dark)", raw)
	}
}

var (
	detectDarkMode = darkmode.IsDarkMode
	terminalDark   = stdoutHasDarkBackground
)

// stdoutHasDarkBackground reports the terminal background; ok is false when
// stdout is not a terminal and nothing can be queried.
func stdoutHasDarkBackground() (dark, ok bool) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return false, false
	}
	return termenv.NewOutput(os.Stdout).HasDarkBackground(), true
}

// ResolveTheme turns ThemeAuto into a concrete theme: the desktop preference
// when it can be read, otherwise the terminal background, otherwise dark.
func ResolveTheme(t Theme) Theme {
	switch t {
	case ThemeLight, ThemeDark:
		return t
	}
	if detectDarkMode != nil {
		dark, err := detectDarkMode()
		if err == nil {
			if dark {
				return ThemeDark
			}
			return ThemeLight
		}
		slog.Debug("detect dark-mode", slog.Any("error", err))
	}
	if terminalDark != nil {
		if dark, ok := terminalDark(); ok && !dark {
			return ThemeLight
		}
	}
	return ThemeDark
}

type colorPalette struct {
	Background string
	Foreground string
	Panel      string
	PanelAlt   string
	Border     string
	Accent     string
	Muted      string
	AddFg      string
	AddBg      string
	DelFg      string
	DelBg      string
	HunkBg     string
	WordAddBg  string
	WordDelBg  string
}

var (
	darkPalette = colorPalette{
		Background: "#0d1117",
		Foreground: "#e6edf3",
		Panel:      "#21262d",
		PanelAlt:   "#161b22",
		Border:     "#30363d",
		Accent:     "#58a6ff",
		Muted:      "#7d8590",
		AddFg:      "#3fb950",
		AddBg:      "#0d4429",
		DelFg:      "#f85149",
		DelBg:      "#5d1a1d",
		HunkBg:     "#1c2128",
		WordAddBg:  "#2ea04366",
		WordDelBg:  "#f8514966",
	}
	lightPalette = colorPalette{
		Background: "#ffffff",
		Foreground: "#1f2328",
		Panel:      "#f6f8fa",
		PanelAlt:   "#f6f8fa",
		Border:     "#d0d7de",
		Accent:     "#0969da",
		Muted:      "#656d76",
		AddFg:      "#1a7f37",
		AddBg:      "#dafbe1",
		DelFg:      "#cf222e",
		DelBg:      "#ffebe9",
		HunkBg:     "#ddf4ff",
		WordAddBg:  "#abf2bc",
		WordDelBg:  "#ffcecb",
	}
)

func paletteFor(t Theme) colorPalette {
	if t == ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// css renders the palette as custom properties consumed by style.css.
func (p colorPalette) css() string {
	vars := [][2]string{
		{"bg", p.Background},
		{"fg", p.Foreground},
		{"panel", p.Panel},
		{"panel-alt", p.PanelAlt},
		{"border", p.Border},
		{"accent", p.Accent},
		{"muted", p.Muted},
		{"add-fg", p.AddFg},
		{"add-bg", p.AddBg},
		{"del-fg", p.DelFg},
		{"del-bg", p.DelBg},
		{"hunk-bg", p.HunkBg},
		{"word-add-bg", p.WordAddBg},
		{"word-del-bg", p.WordDelBg},
	}
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "  --%s: %s;\n", v[0], v[1])
	}
	b.WriteString("}\n")
	return b.String()
}

func stylesheet(t Theme) template.CSS {
	return template.CSS(paletteFor(t).css() + baseCSS)
}
