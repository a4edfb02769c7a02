package gauge

import "testing"

func TestParseTheme(t *testing.T) {
	for _, name := range Themes() {
		theme, err := ParseTheme(name)
		if err != nil {
			t.Errorf("ParseTheme(%q) error = %v", name, err)
			continue
		}
		if theme.Name != name {
			t.Errorf("ParseTheme(%q).Name = %q", name, theme.Name)
		}
	}
}

func TestParseThemeDefault(t *testing.T) {
	theme, err := ParseTheme("")
	if err != nil {
		t.Fatalf("ParseTheme(\"\") error = %v", err)
	}
	if theme.Name != DefaultTheme {
		t.Errorf("ParseTheme(\"\").Name = %q, want %q", theme.Name, DefaultTheme)
	}
}

func TestParseThemeUnknown(t *testing.T) {
	if _, err := ParseTheme("sepia"); err == nil {
		t.Error("ParseTheme(\"sepia\") error = nil")
	}
}
