package core

import (
	"github.com/ephraimraxy/docflow/util"
	"gitlab.com/golang-commonmark/markdown"
)

var markdownParser = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderDocument renders the document's Markdown content to HTML and a
// plain-text excerpt for list views.
func (c *CoreDB) RenderDocument(actor *User, docID string, excerptRunes int) (html string, excerpt string, err error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return "", "", err
	}

	if !CanAccess(doc, actor) {
		return "", "", ErrUnauthorized
	}

	html = markdownParser.RenderToString([]byte(doc.Content))
	excerpt = util.Trunc(util.TextContent(html), excerptRunes)
	return html, excerpt, nil
}
