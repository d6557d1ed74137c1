package util

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent extracts the text content of an HTML fragment, with a
// single space between text nodes. Markup errors end the extraction, the
// collected text so far is returned.
func TextContent(fragment string) string {

	var tokenizer = html.NewTokenizerFragment(strings.NewReader(fragment), "body")
	tokenizer.SetMaxBuf(64 * 1024)

	var b strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			var text = strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
	}
}
