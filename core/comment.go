package core

import (
	"strings"
	"time"
)

type Comment struct {
	ID        string
	DocID     string
	AuthorUID string
	Text      string
	TsCreated int64
}

type CommentDB interface {
	GetComments(docID string) ([]*Comment, error) // oldest first
	InsertComment(cm *Comment) error              // assigns ID
}

// AddComment appends a comment; any participant with access may comment.
func (c *CoreDB) AddComment(actor *User, docID, text string) (*Comment, error) {

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validationf("missing_comment", "comment text is required")
	}

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanAccess(doc, actor) {
		return nil, ErrUnauthorized
	}

	var cm = &Comment{
		DocID:     docID,
		AuthorUID: actor.ID,
		Text:      text,
		TsCreated: time.Now().Unix(),
	}

	if err := c.CommentDB.InsertComment(cm); err != nil {
		return nil, err
	}

	return cm, nil
}

// DocumentComments lists comments for users with access.
func (c *CoreDB) DocumentComments(actor *User, docID string) ([]*Comment, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanAccess(doc, actor) {
		return nil, ErrUnauthorized
	}

	return c.CommentDB.GetComments(docID)
}
