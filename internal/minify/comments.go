package minify

import (
	"regexp"
	"strings"
)

var (
	blockCommentRE = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	lineCommentRE  = regexp.MustCompile(`//[^\n]*`)
)

// stripComments removes ordinary comments. Important comments were already
// replaced by placeholders during extraction, as were strings and regex
// literals, so comment-looking substrings inside them cannot be corrupted
// here. A block comment becomes a single space because a comment can act
// as a token separator (`a/**/b` is two tokens). A block comment spanning
// a line break is itself a line terminator for semicolon insertion, so it
// leaves a newline behind for the collapse stage to see.
func stripComments(text string, lang Language) string {
	text = blockCommentRE.ReplaceAllStringFunc(text, func(comment string) string {
		if strings.ContainsAny(comment, "\n\r") {
			return "\n"
		}
		return " "
	})
	if lang == LangJS {
		text = lineCommentRE.ReplaceAllString(text, "")
	}
	return text
}
