package api

import (
	"net/http"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
)

type commentView struct {
	ID        string `json:"id"`
	DocID     string `json:"docId"`
	AuthorUID string `json:"authorUid"`
	Text      string `json:"text"`
	TsCreated int64  `json:"createdAt"`
}

func newCommentView(c *core.Comment) commentView {
	return commentView{
		ID:        c.ID,
		DocID:     c.DocID,
		AuthorUID: c.AuthorUID,
		Text:      c.Text,
		TsCreated: c.TsCreated,
	}
}

func (s *Server) addComment(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	comment, err := s.db.AddComment(ctx.User, params.ByName("id"), body.Text)
	if err != nil {
		return err
	}

	ctx.audit("ADD_COMMENT", "document", comment.DocID, nil)

	return writeJSON(w, http.StatusCreated, newCommentView(comment))
}

func (s *Server) listComments(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	comments, err := s.db.DocumentComments(ctx.User, params.ByName("id"))
	if err != nil {
		return err
	}

	var views = make([]commentView, len(comments))
	for i, c := range comments {
		views[i] = newCommentView(c)
	}

	return writeJSON(w, http.StatusOK, views)
}
