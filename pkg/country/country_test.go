package country

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
		wantOK   bool
	}{
		{"US", "us", true},
		{" de ", "de", true},
		{`"FR"`, "fr", true},
		{"zz", "zz", true}, // two letters always pass through
		{"Germany", "de", true},
		{"united states", "us", true},
		{"United Kingdom", "gb", true},
		{"The Netherlands", "nl", true},
		{"South Korea", "kr", true},
		{"DEU", "de", true},
		{"Atlantis", "", false},
		{"ü", "", false}, // two bytes, one letter
		{"1a", "", false},
		{"a.", "", false},
		{"TOR", "", false},
		{"tor", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := Resolve(tt.input)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.input, code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestResolveOrRaw(t *testing.T) {
	code, ok := ResolveOrRaw("Germany")
	if code != "de" || !ok {
		t.Errorf("ResolveOrRaw(Germany) = (%q, %v), want (de, true)", code, ok)
	}

	raw, ok := ResolveOrRaw("  Middle Earth ")
	if raw != "middle earth" || ok {
		t.Errorf("ResolveOrRaw(Middle Earth) = (%q, %v), want (middle earth, false)", raw, ok)
	}
}

func TestCodeToName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"de", "Germany"},
		{"US", "United States"},
		{"zz", "ZZ"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CodeToName(tt.code); got != tt.want {
			t.Errorf("CodeToName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRegion(t *testing.T) {
	if got := Region("de"); got != "Europe" {
		t.Errorf("Region(de) = %q, want Europe", got)
	}
	if got := Region("br"); got != "Americas" {
		t.Errorf("Region(br) = %q, want Americas", got)
	}
	if got := Region("nowhere"); got != "" {
		t.Errorf("Region(nowhere) = %q, want empty", got)
	}
}
