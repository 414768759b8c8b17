package postgres

import "testing"

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"drone":    "%drone%",
		"_":        `%\_%`,
		"100%":     `%100\%%`,
		`C:\path`:  `%C:\\path%`,
		"a_b%c\\d": `%a\_b\%c\\d%`,
		"":         "%%",
	}
	for in, want := range cases {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
