package minify

import (
	"regexp"
	"strings"
)

var whitespaceRunRE = regexp.MustCompile(`[ \t\n]+`)

// collapseRules is the per-language rule table for the whitespace stage.
type collapseRules struct {
	// punct holds the characters around which whitespace is removed.
	punct string
	// respace, if non-nil, re-inserts mandatory keyword boundaries after
	// punctuation-adjacent spaces have been removed.
	respace func(string) string
}

var cssRules = collapseRules{
	punct: "{};:,>+~",
}

var jsRules = collapseRules{
	punct:   "{}[]();,.:?<>=+-*/%!&|^~",
	respace: respaceJSKeywords,
}

func rulesFor(lang Language) collapseRules {
	if lang == LangCSS {
		return cssRules
	}
	return jsRules
}

// collapse normalizes line endings, collapses whitespace runs and removes
// whitespace adjacent to punctuation according to the language rule table.
// For JS it first rewrites newlines into explicit statement terminators so
// that flattening the document cannot glue two statements together.
func collapse(text string, lang Language) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if lang == LangJS {
		text = normalizeTerminators(text)
	}
	text = whitespaceRunRE.ReplaceAllString(text, " ")
	rules := rulesFor(lang)
	text = removePunctSpaces(text, rules.punct)
	if rules.respace != nil {
		text = rules.respace(text)
	}
	if lang == LangCSS {
		// a semicolon before a closing brace is redundant
		text = strings.ReplaceAll(text, ";}", "}")
	}
	return strings.TrimSpace(text)
}

// removePunctSpaces drops spaces that touch a punctuation character on
// either side. A space stays when both neighbors are word characters
// (dropping it would merge two tokens) and between twin plus or minus signs
// (dropping it would fabricate an increment or decrement operator).
func removePunctSpaces(text, punct string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != ' ' {
			out = append(out, c)
			continue
		}
		var prev byte
		if len(out) > 0 {
			prev = out[len(out)-1]
		}
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}
		if prev == 0 || next == 0 {
			continue
		}
		if strings.IndexByte(punct, prev) >= 0 || strings.IndexByte(punct, next) >= 0 {
			if (prev == '+' && next == '+') || (prev == '-' && next == '-') {
				out = append(out, c)
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// jsRespaceRE re-inserts the single space a keyword must keep before a
// following expression. Where the next character opens a group or ends the
// statement no space is needed.
var jsRespaceRE = regexp.MustCompile(`\b(return|throw|new|delete|typeof|void|in|of|instanceof|case|yield|do|else|var|let|const|await|export|import|default|extends)([^\s\w$;{}()\[\],.:])`)

func respaceJSKeywords(text string) string {
	return jsRespaceRE.ReplaceAllString(text, "$1 $2")
}

// asiRestrictedKeywords are the tokens after which a line break always
// terminates the statement, regardless of what follows.
var asiRestrictedKeywords = map[string]bool{
	"return":   true,
	"throw":    true,
	"break":    true,
	"continue": true,
	"yield":    true,
}

// continuationKeywords never end a statement at a line break; the next line
// always belongs to the same construct.
var continuationKeywords = map[string]bool{
	"var": true, "let": true, "const": true, "new": true, "typeof": true,
	"delete": true, "void": true, "in": true, "of": true, "instanceof": true,
	"else": true, "do": true, "case": true, "function": true, "if": true,
	"for": true, "while": true, "switch": true, "catch": true, "finally": true,
	"try": true, "import": true, "export": true, "default": true,
	"extends": true, "class": true, "async": true, "await": true,
}

// normalizeTerminators rewrites every newline run either into a semicolon
// or a plain space, before whitespace collapsing erases the line structure.
// The decision mirrors automatic semicolon insertion: a semicolon goes in
// when the previous line ends a value (identifier, literal placeholder or
// closing bracket, and not a restricted keyword context) and the next line
// cannot extend that value.
func normalizeTerminators(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	lastWord := ""
	var prev, prev2 byte // last two significant bytes before the newline
	i, n := 0, len(text)
	for i < n {
		c := text[i]
		if c != '\n' {
			if isIdentByte(c) {
				j := i + 1
				for j < n && isIdentByte(text[j]) {
					j++
				}
				lastWord = text[i:j]
				out.WriteString(lastWord)
				if j-i >= 2 {
					prev2 = text[j-2]
				} else {
					prev2 = prev
				}
				prev = text[j-1]
				i = j
				continue
			}
			if c != ' ' && c != '\t' {
				prev2 = prev
				prev = c
			}
			out.WriteByte(c)
			i++
			continue
		}
		// swallow the whole whitespace run around the newline
		j := i
		for j < n && (text[j] == '\n' || text[j] == ' ' || text[j] == '\t') {
			j++
		}
		var next byte
		if j < n {
			next = text[j]
		}
		var next2 byte
		if j+1 < n {
			next2 = text[j+1]
		}
		if terminatesStatement(prev, prev2, lastWord, next, next2) {
			out.WriteByte(';')
			prev2 = prev
			prev = ';'
		} else {
			out.WriteByte(' ')
		}
		i = j
	}
	return out.String()
}

// terminatesStatement decides whether a line break between prev and next is
// a statement boundary.
func terminatesStatement(prev, prev2 byte, lastWord string, next, next2 byte) bool {
	if prev == 0 || next == 0 {
		return false
	}
	if asiRestrictedKeywords[lastWord] && isIdentByte(prev) {
		return true
	}
	// a postfix ++ or -- ends a value like an identifier does
	postfix := (prev == '+' && prev2 == '+') || (prev == '-' && prev2 == '-')
	// the previous line must end a value
	if !isIdentByte(prev) && prev != ')' && prev != ']' && prev != '}' && !postfix {
		return false
	}
	if isIdentByte(prev) && continuationKeywords[lastWord] {
		return false
	}
	// nothing can call or index the result of a postfix operator
	if postfix && (next == '(' || next == '[') {
		return true
	}
	// ++ and -- at the start of a line always belong to the new statement
	if (next == '+' && next2 == '+') || (next == '-' && next2 == '-') {
		return true
	}
	// tokens that extend the previous expression: operators, call and index
	// groups, member access, template literals
	if strings.IndexByte("+-*/%<>=&|^?:,;.([", next) >= 0 {
		return false
	}
	if next == '}' || next == ')' || next == ']' {
		return false
	}
	// identifier, number, literal placeholder, unary ! or ~, or an opening
	// brace: the new line starts a new statement
	return true
}
