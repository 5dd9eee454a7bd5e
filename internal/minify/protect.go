package minify

import (
	"fmt"
	"strings"
)

// RegionKind identifies the class of a protected region.
type RegionKind string

const (
	RegionImportantComment RegionKind = "IMP"
	RegionDataURI          RegionKind = "URI"
	RegionCalcExpr         RegionKind = "CALC"
	RegionStringLiteral    RegionKind = "STR"
	RegionTemplateLiteral  RegionKind = "TPL"
	RegionRegexLiteral     RegionKind = "RGX"
)

// protectedRegion pairs a placeholder with the original text it replaced.
type protectedRegion struct {
	placeholder string
	original    string
	kind        RegionKind
}

// extractor owns the protected-region bookkeeping for a single pipeline
// invocation. Placeholders are built from word characters only, so the
// collapse and rewrite stages treat them as opaque identifiers and never
// split or respace them. The counter is per-invocation; concurrent runs
// never share state.
type extractor struct {
	counter int
	prefix  string
	regions []protectedRegion
}

// initPrefix picks a placeholder prefix that cannot occur in src: the
// shortest run of three or more underscores the source does not contain.
// Since every placeholder starts with the prefix, no placeholder can match
// a substring the author wrote, and restore cannot touch user text.
func (e *extractor) initPrefix(src string) {
	p := "___"
	for strings.Contains(src, p) {
		p += "_"
	}
	e.prefix = p
}

func (e *extractor) protect(kind RegionKind, original string) string {
	if e.prefix == "" {
		e.prefix = "___"
	}
	ph := fmt.Sprintf("%s%s_%d___", e.prefix, kind, e.counter)
	e.counter++
	e.regions = append(e.regions, protectedRegion{placeholder: ph, original: original, kind: kind})
	return ph
}

// lookup returns the region recorded for placeholder.
func (e *extractor) lookup(placeholder string) (protectedRegion, bool) {
	for _, r := range e.regions {
		if r.placeholder == placeholder {
			return r, true
		}
	}
	return protectedRegion{}, false
}

// restore substitutes every placeholder back with its original text. It
// iterates in reverse extraction order so a region whose original text
// happens to embed an earlier placeholder is resolved before that earlier
// placeholder is put back.
func (e *extractor) restore(text string) string {
	for i := len(e.regions) - 1; i >= 0; i-- {
		r := e.regions[i]
		text = strings.Replace(text, r.placeholder, r.original, 1)
	}
	return text
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '$'
}

// extractCSS runs a single left-to-right scan over CSS source. At every
// position the pattern classes are tried in fixed priority order: comments
// (important ones become regions, ordinary ones are skipped over verbatim
// for the stripper), data URIs inside url(), calc() expressions, then
// string literals. Scanning over a construct means its contents are never
// re-examined, so a brace inside a string or a quote inside a comment
// cannot confuse later stages.
func (e *extractor) extractCSS(src string) (string, error) {
	e.initPrefix(src)
	var out strings.Builder
	out.Grow(len(src))
	var prev byte
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		if c == '/' && i+1 < n && src[i+1] == '*' {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return "", NewMalformedInputError("unterminated comment")
			}
			comment := src[i : i+4+end]
			if strings.HasPrefix(comment, "/*!") {
				out.WriteString(e.protect(RegionImportantComment, comment))
			} else {
				out.WriteString(comment)
			}
			i += len(comment)
			prev = '/'
			continue
		}
		if (c == 'u' || c == 'U') && !isIdentByte(prev) {
			if lit, ok, err := matchDataURI(src[i:]); err != nil {
				return "", err
			} else if ok {
				out.WriteString(e.protect(RegionDataURI, lit))
				i += len(lit)
				prev = ')'
				continue
			}
		}
		if (c == 'c' || c == 'C') && !isIdentByte(prev) {
			if expr, ok, err := matchCalc(src[i:]); err != nil {
				return "", err
			} else if ok {
				out.WriteString(e.protect(RegionCalcExpr, expr))
				i += len(expr)
				prev = ')'
				continue
			}
		}
		if c == '"' || c == '\'' {
			lit, err := scanString(src[i:], c, false)
			if err != nil {
				return "", err
			}
			out.WriteString(e.protect(RegionStringLiteral, lit))
			i += len(lit)
			prev = c
			continue
		}
		out.WriteByte(c)
		prev = c
		i++
	}
	return out.String(), nil
}

// matchDataURI matches a url(...) token whose payload is a data: URI.
// Ordinary url() references are left for the string scanner; only data URIs
// carry base64 payloads whose '+' and '/' runs must survive untouched.
func matchDataURI(s string) (string, bool, error) {
	if len(s) < 4 || !strings.EqualFold(s[:4], "url(") {
		return "", false, nil
	}
	j := 4
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	var quote byte
	if j < len(s) && (s[j] == '"' || s[j] == '\'') {
		quote = s[j]
		j++
	}
	if j+5 > len(s) || !strings.EqualFold(s[j:j+5], "data:") {
		return "", false, nil
	}
	for ; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			// closing quote; keep scanning for the paren
			quote = 0
		case ')':
			if quote == 0 {
				return s[:j+1], true, nil
			}
		}
	}
	return "", false, NewMalformedInputError("unterminated url() in data URI")
}

// matchCalc matches a calc(...) expression, including nested parentheses.
// The whole expression becomes one region because whitespace around + and -
// inside calc() is semantically required.
func matchCalc(s string) (string, bool, error) {
	if len(s) < 5 || !strings.EqualFold(s[:5], "calc(") {
		return "", false, nil
	}
	depth := 0
	for j := 4; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:j+1], true, nil
			}
		}
	}
	return "", false, NewMalformedInputError("unbalanced calc() expression")
}

// scanString scans a quoted literal starting at s[0], honoring backslash
// escapes so an escaped quote does not terminate the match early.
func scanString(s string, quote byte, allowNewline bool) (string, error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return s[:i+1], nil
		case '\n':
			if !allowNewline {
				return "", NewMalformedInputError("unterminated string literal")
			}
		}
	}
	return "", NewMalformedInputError("unterminated string literal")
}

// regexPrecedingKeywords is the fixed keyword set after which a slash opens
// a regex literal rather than a division.
var regexPrecedingKeywords = map[string]bool{
	"return":     true,
	"typeof":     true,
	"case":       true,
	"in":         true,
	"of":         true,
	"instanceof": true,
	"new":        true,
	"delete":     true,
	"void":       true,
	"throw":      true,
	"yield":      true,
	"do":         true,
	"else":       true,
}

// regexAllowed reports whether a slash at the current position can open a
// regex literal, given the preceding significant token. Start of input,
// start of block, most operators and a fixed keyword set allow a regex;
// after an identifier, number, placeholder or closing bracket a slash is
// division.
func regexAllowed(last string) bool {
	if last == "" {
		return true
	}
	if regexPrecedingKeywords[last] {
		return true
	}
	if len(last) == 1 && strings.ContainsAny(last, "+-*/%=<>!&|^~?:,;({[}") {
		return true
	}
	return false
}

// extractJS runs a single left-to-right scan over JS source, extracting
// important comments, string and template literals, and regex literals.
// Ordinary comments are skipped over verbatim (the stripper removes them)
// and do not change the token context. The scan tracks the preceding
// significant token to disambiguate regex literals from division.
func (e *extractor) extractJS(src string) (string, error) {
	e.initPrefix(src)
	var out strings.Builder
	out.Grow(len(src))
	lastSig := "" // empty means start of input
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return "", NewMalformedInputError("unterminated comment")
			}
			comment := src[i : i+4+end]
			if strings.HasPrefix(comment, "/*!") {
				out.WriteString(e.protect(RegionImportantComment, comment))
			} else {
				out.WriteString(comment)
			}
			i += len(comment)
		case c == '/' && i+1 < n && src[i+1] == '/':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				out.WriteString(src[i:])
				i = n
			} else {
				out.WriteString(src[i : i+end])
				i += end
			}
		case c == '"' || c == '\'':
			lit, err := scanString(src[i:], c, false)
			if err != nil {
				return "", err
			}
			ph := e.protect(RegionStringLiteral, lit)
			out.WriteString(ph)
			i += len(lit)
			lastSig = ph
		case c == '`':
			lit, err := scanTemplate(src[i:])
			if err != nil {
				return "", err
			}
			ph := e.protect(RegionTemplateLiteral, lit)
			out.WriteString(ph)
			i += len(lit)
			lastSig = ph
		case c == '/':
			if regexAllowed(lastSig) {
				lit, err := scanRegex(src[i:])
				if err != nil {
					return "", err
				}
				ph := e.protect(RegionRegexLiteral, lit)
				out.WriteString(ph)
				i += len(lit)
				lastSig = ph
			} else {
				out.WriteByte(c)
				i++
				lastSig = "/"
			}
		case isIdentByte(c):
			j := i + 1
			for j < n && isIdentByte(src[j]) {
				j++
			}
			word := src[i:j]
			out.WriteString(word)
			lastSig = word
			i = j
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			out.WriteByte(c)
			i++
		case (c == '+' || c == '-') && i+1 < n && src[i+1] == c:
			// ++ and -- are single tokens; a slash after them is division
			out.WriteByte(c)
			out.WriteByte(c)
			i += 2
			lastSig = src[i-2 : i]
		default:
			out.WriteByte(c)
			i++
			lastSig = string(c)
		}
	}
	return out.String(), nil
}

// scanTemplate scans a template literal. Substitution blocks are tracked by
// brace depth so a closing backtick inside ${...} does not end the literal.
func scanTemplate(s string) (string, error) {
	depth := 0
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				depth++
				i++
			}
		case '}':
			if depth > 0 {
				depth--
			}
		case '`':
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}
	return "", NewMalformedInputError("unterminated template literal")
}

// scanRegex scans a regex literal, honoring escapes and character classes
// (a slash inside [...] does not terminate the literal), then consumes the
// trailing flags.
func scanRegex(s string) (string, error) {
	inClass := false
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\n':
			return "", NewMalformedInputError("unterminated regular expression")
		case '/':
			if !inClass {
				j := i + 1
				for j < len(s) && isIdentByte(s[j]) {
					j++
				}
				return s[:j], nil
			}
		}
	}
	return "", NewMalformedInputError("unterminated regular expression")
}
