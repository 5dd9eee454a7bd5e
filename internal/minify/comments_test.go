package minify

import "testing"

func TestStripComments(t *testing.T) {
	tests := []struct {
		name  string
		lang  Language
		input string
		want  string
	}{
		{"block comment becomes a space", LangJS, "a/**/b", "a b"},
		{"multiline block comment becomes a newline", LangJS, "a = 1 /* note\nmore */ b = 2", "a = 1 \n b = 2"},
		{"line comment removed", LangJS, "var a = 1; // note", "var a = 1; "},
		{"line comment stops at newline", LangJS, "// note\nvar a = 1;", "\nvar a = 1;"},
		{"css keeps double slashes", LangCSS, "url(//cdn.example.com/a.png)", "url(//cdn.example.com/a.png)"},
		{"css block comment", LangCSS, ".a{}/* note */.b{}", ".a{} .b{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripComments(tt.input, tt.lang); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
