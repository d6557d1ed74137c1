package api

import (
	"net/http"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
)

type officeView struct {
	ID         string `json:"id"`
	OfficeID   string `json:"officeId"`
	Name       string `json:"name"`
	OfficeCode string `json:"officeCode"`
	TsCreated  int64  `json:"createdAt"`
}

func newOfficeView(o *core.Office) officeView {
	return officeView{
		ID:         o.ID,
		OfficeID:   o.OfficeID,
		Name:       o.Name,
		OfficeCode: o.OfficeCode,
		TsCreated:  o.TsCreated,
	}
}

type messageView struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	OfficeID  string `json:"officeId,omitempty"`
	CreatedBy string `json:"createdBy"`
	TsCreated int64  `json:"createdAt"`
	Read      bool   `json:"read"`
}

func newMessageView(m *core.Message, readerKey string) messageView {
	return messageView{
		ID:        m.ID,
		Subject:   m.Subject,
		Body:      m.Body,
		OfficeID:  m.OfficeID,
		CreatedBy: m.CreatedBy,
		TsCreated: m.TsCreated,
		Read:      m.IsReadBy(readerKey),
	}
}

// officeToken extracts the bearer token from the header or, as a
// fallback for dashboard links, the query string.
func officeToken(req *http.Request) string {
	if t := req.Header.Get("X-Office-Session"); t != "" {
		return t
	}
	return req.URL.Query().Get("session")
}

func (s *Server) officeLogin(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		OfficeCode string `json:"officeCode"`
		Password   string `json:"password"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	office, session, err := s.db.OfficeLogin(body.OfficeCode, body.Password)
	if err != nil {
		return err
	}

	ctx.audit("OFFICE_LOGIN", "office", office.ID, nil)

	return writeJSON(w, http.StatusOK, map[string]interface{}{
		"office":    newOfficeView(office),
		"session":   session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

func (s *Server) officeLogout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var token = officeToken(req)

	office, _, err := s.db.ValidateOfficeSession(token)
	if err != nil {
		return err
	}
	if err := s.db.OfficeLogout(token); err != nil {
		return err
	}

	ctx.audit("OFFICE_LOGOUT", "office", office.ID, nil)

	return writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) officeDocuments(w http.ResponseWriter, req *http.Request, _ *context, _ httprouter.Params) error {

	office, _, err := s.db.ValidateOfficeSession(officeToken(req))
	if err != nil {
		return err
	}

	var q = req.URL.Query()
	docs, err := s.db.OfficeDocuments(office, core.DocumentFilter{
		Status: core.Status(q.Get("status")),
		Query:  q.Get("q"),
		Limit:  queryInt(req, "limit"),
		Offset: queryInt(req, "offset"),
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newDocumentViews(docs))
}

func (s *Server) officeMessages(w http.ResponseWriter, req *http.Request, _ *context, _ httprouter.Params) error {

	office, _, err := s.db.ValidateOfficeSession(officeToken(req))
	if err != nil {
		return err
	}

	messages, err := s.db.MessageDB.GetMessages(office.ID, queryInt(req, "limit"), queryInt(req, "offset"))
	if err != nil {
		return err
	}

	var readerKey = core.OfficeReaderKey(office.ID)
	var views = make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = newMessageView(m, readerKey)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) officeReadMessage(w http.ResponseWriter, req *http.Request, _ *context, params httprouter.Params) error {

	office, _, err := s.db.ValidateOfficeSession(officeToken(req))
	if err != nil {
		return err
	}

	m, err := s.db.MessageDB.GetMessage(params.ByName("id"))
	if err != nil {
		return err
	}
	if m.OfficeID != "" && m.OfficeID != office.ID {
		return core.NotFoundf("no such message")
	}

	if err := s.db.MessageDB.MarkMessageRead(m.ID, core.OfficeReaderKey(office.ID)); err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
