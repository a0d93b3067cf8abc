package preference

import "strings"

// Theme is the display preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when nothing is persisted and the environment has no preference.
const Default = Light

// Valid reports whether t is Light or Dark.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Complement returns the other theme.
func (t Theme) Complement() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is Dark. It is the boolean the display layer toggles.
func (t Theme) IsDark() bool { return t == Dark }

func (t Theme) String() string { return string(t) }

// ParseTheme parses a persisted value. Surrounding spaces and case are ignored.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}
