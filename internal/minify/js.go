package minify

import (
	"regexp"
	"strings"
)

// jsReservedWords lists the words that must never appear after a dot as a
// shorthand for bracket access. The set covers current and future reserved
// words plus the literal keywords; producing `obj.class` would be a syntax
// error in pre-ES5 consumers, so the guard errs on the side of the old
// grammar.
var jsReservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"implements": true, "import": true, "in": true, "instanceof": true,
	"interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true,
	"return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
}

var jsIdentifierRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// rewriteJS applies the JS micro-rewrites, in order: boolean literal
// shortening, bracket-to-dot property access, then statement terminator
// cleanup. The extractor is consulted to resolve string placeholders during
// the bracket rewrite.
func rewriteJS(text string, ex *extractor) string {
	text = replaceWordGuarded(text, "true", "!0")
	text = replaceWordGuarded(text, "false", "!1")
	text = rewriteDotAccess(text, ex)
	text = cleanSemicolons(text)
	return text
}

// replaceWordGuarded substitutes whole-word occurrences of word, skipping
// property positions (`x.true`) and object literal keys (`{true: 1}`),
// where the replacement would change meaning or break syntax.
func replaceWordGuarded(text, word, repl string) string {
	var out strings.Builder
	for {
		idx := strings.Index(text, word)
		if idx < 0 {
			out.WriteString(text)
			break
		}
		var prev, next byte
		if idx > 0 {
			prev = text[idx-1]
		}
		if end := idx + len(word); end < len(text) {
			next = text[end]
		}
		ok := !isIdentByte(prev) && prev != '.' && !isIdentByte(next) && next != ':'
		out.WriteString(text[:idx])
		if ok {
			out.WriteString(repl)
		} else {
			out.WriteString(word)
		}
		text = text[idx+len(word):]
	}
	return out.String()
}

// The underscore run is 3+ long because the extractor salts its placeholder
// prefix with extra underscores when the source already contains one.
var bracketAccessRE = regexp.MustCompile(`\[(_{3,}STR_[0-9]+___)\]`)

// rewriteDotAccess turns obj["name"] into obj.name when the key is a plain
// identifier and not a reserved word. The bracket must follow an expression
// (identifier, this/super, or closing bracket); after a keyword like
// `return` the bracket opens an array literal and is left alone. The
// consumed string region simply never gets restored.
func rewriteDotAccess(text string, ex *extractor) string {
	matches := bracketAccessRE.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}
	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		out.WriteString(text[last:start])
		last = end
		keep := func() { out.WriteString(text[start:end]) }

		var prev byte
		if start > 0 {
			prev = text[start-1]
		}
		if !isIdentByte(prev) && prev != ')' && prev != ']' {
			keep()
			continue
		}
		if isIdentByte(prev) {
			w := start - 1
			for w > 0 && isIdentByte(text[w-1]) {
				w--
			}
			word := text[w:start]
			if jsReservedWords[word] && word != "this" && word != "super" {
				keep()
				continue
			}
			// a number literal before the dot would swallow it
			if word[0] >= '0' && word[0] <= '9' {
				keep()
				continue
			}
		}
		region, ok := ex.lookup(text[m[2]:m[3]])
		if !ok || len(region.original) < 2 {
			keep()
			continue
		}
		lit := region.original
		quote := lit[0]
		if (quote != '"' && quote != '\'') || lit[len(lit)-1] != quote {
			keep()
			continue
		}
		name := lit[1 : len(lit)-1]
		if strings.ContainsRune(name, '\\') || !jsIdentifierRE.MatchString(name) || jsReservedWords[name] {
			keep()
			continue
		}
		out.WriteByte('.')
		out.WriteString(name)
	}
	out.WriteString(text[last:])
	return out.String()
}

// cleanSemicolons collapses runs of semicolons and drops one immediately
// before a closing brace. Semicolons inside a for(...) header are exempt:
// `for(;;)` needs its empty clauses. A semicolon directly after `)` is
// also kept, because it may be the empty body of a while/if/for statement,
// as in `while(g());`.
func cleanSemicolons(text string) string {
	spans := forHeaderSpans(text)
	var out strings.Builder
	out.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != ';' {
			out.WriteByte(c)
			continue
		}
		if inSpan(spans, i) {
			out.WriteByte(c)
			continue
		}
		var prev byte
		if s := out.String(); s != "" {
			prev = s[len(s)-1]
		}
		// swallow the run
		for i+1 < len(text) && text[i+1] == ';' && !inSpan(spans, i+1) {
			i++
		}
		if i+1 < len(text) && text[i+1] == '}' && prev != ')' {
			continue
		}
		out.WriteByte(';')
	}
	return out.String()
}

type span struct{ start, end int }

func inSpan(spans []span, i int) bool {
	for _, s := range spans {
		if i >= s.start && i < s.end {
			return true
		}
	}
	return false
}

// forHeaderSpans locates the parenthesized headers of for statements.
func forHeaderSpans(text string) []span {
	var spans []span
	for i := 0; i+3 < len(text); i++ {
		if text[i] != 'f' || text[i+1] != 'o' || text[i+2] != 'r' {
			continue
		}
		if i > 0 && isIdentByte(text[i-1]) {
			continue
		}
		j := i + 3
		for j < len(text) && text[j] == ' ' {
			j++
		}
		if j >= len(text) || text[j] != '(' {
			continue
		}
		depth := 0
		start := j
		for ; j < len(text); j++ {
			if text[j] == '(' {
				depth++
			} else if text[j] == ')' {
				depth--
				if depth == 0 {
					spans = append(spans, span{start: start, end: j + 1})
					break
				}
			}
		}
		i = j
	}
	return spans
}
