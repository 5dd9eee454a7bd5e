package minify

import "testing"

func TestRewriteCSS(t *testing.T) {
	re := compileZeroUnitRE(nil)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading zero", ".a{opacity:0.5}", ".a{opacity:.5}"},
		{"leading zero in list", ".a{margin:0.5em 0.25em}", ".a{margin:.5em .25em}"},
		{"negative value untouched", ".a{margin:-0.5em}", ".a{margin:-0.5em}"},
		{"zero glued to a var call untouched", ".a{width:var(--a)0.5em}", ".a{width:var(--a)0.5em}"},
		{"integer part kept", ".a{width:10.5px}", ".a{width:10.5px}"},
		{"zero px", ".a{margin:0px}", ".a{margin:0}"},
		{"zero unit in list", ".a{margin:0px 0em}", ".a{margin:0 0}"},
		{"percentage untouched", ".a{width:0%}", ".a{width:0%}"},
		{"duration untouched", ".a{transition:all 0s}", ".a{transition:all 0s}"},
		{"negative zero untouched", ".a{margin:-0px}", ".a{margin:-0px}"},
		{"nonzero untouched", ".a{margin:10px}", ".a{margin:10px}"},
		{"uppercase unit", ".a{margin:0PX}", ".a{margin:0}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteCSS(tt.input, re); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileZeroUnitRECustomList(t *testing.T) {
	re := compileZeroUnitRE([]string{"px"})
	if got := rewriteCSS(".a{margin:0em}", re); got != ".a{margin:0em}" {
		t.Errorf("em should not be stripped with a px-only allow-list, got %q", got)
	}
	if got := rewriteCSS(".a{margin:0px}", re); got != ".a{margin:0}" {
		t.Errorf("px should be stripped, got %q", got)
	}
}
