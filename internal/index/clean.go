package index

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// CleanText strips HTML markup and collapses whitespace. Abstracts arrive
// with embedded tags (<i>, <sup>, section markup) that would pollute both
// the chunks shown to the generator and the term statistics.
func CleanText(text string) string {
	if strings.ContainsRune(text, '<') {
		text = stripTags(text)
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// stripTags walks the token stream and keeps only text nodes. Malformed
// markup is tolerated: the tokenizer never fails, it just stops.
func stripTags(text string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}
