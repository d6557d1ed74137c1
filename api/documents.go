package api

import (
	"net/http"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
)

type participantsBody struct {
	Editors   []string `json:"editors"`
	Reviewers []string `json:"reviewers"`
	Approvers []string `json:"approvers"`
	Viewers   []string `json:"viewers"`
}

func (p participantsBody) participants() core.Participants {
	return core.Participants{
		Editors:   p.Editors,
		Reviewers: p.Reviewers,
		Approvers: p.Approvers,
		Viewers:   p.Viewers,
	}
}

func (s *Server) createDocument(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		Title        string           `json:"title"`
		Content      string           `json:"content"`
		DepartmentID string           `json:"departmentId"`
		Participants participantsBody `json:"participants"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	doc, err := s.db.CreateDocument(ctx.User, body.Title, body.Content, body.DepartmentID, body.Participants.participants())
	if err != nil {
		return err
	}

	ctx.audit("CREATE_DOCUMENT", "document", doc.ID, nil)

	return writeJSON(w, http.StatusCreated, newDocumentView(doc))
}

func (s *Server) listDocuments(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var q = req.URL.Query()
	var filter = core.DocumentFilter{
		Status:       core.Status(q.Get("status")),
		DepartmentID: q.Get("department"),
		OwnerUID:     q.Get("owner"),
		Query:        q.Get("q"),
		Limit:        queryInt(req, "limit"),
		Offset:       queryInt(req, "offset"),
	}

	docs, err := s.db.DocumentDB.GetDocuments(filter)
	if err != nil {
		return err
	}

	// non-admins only see documents they participate in
	if !ctx.User.IsAdmin() {
		var visible = docs[:0]
		for _, d := range docs {
			if core.CanAccess(d, ctx.User) {
				visible = append(visible, d)
			}
		}
		docs = visible
	}

	return writeJSON(w, http.StatusOK, newDocumentViews(docs))
}

func (s *Server) getDocument(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.DocumentDB.GetDocument(params.ByName("id"))
	if err != nil {
		return err
	}

	if !core.CanAccess(doc, ctx.User) {
		return core.ErrUnauthorized
	}

	var view = struct {
		documentView
		CurrentVersion *versionView `json:"currentVersion,omitempty"`
	}{
		documentView: newDocumentView(doc),
	}

	if doc.CurrentVersionID != "" {
		latest, err := s.db.VersionDB.GetLatestVersion(doc.ID)
		if err != nil {
			return err
		}
		var v = newVersionView(latest)
		view.CurrentVersion = &v
	}

	return writeJSON(w, http.StatusOK, view)
}

func (s *Server) renderDocument(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	html, excerpt, err := s.db.RenderDocument(ctx.User, params.ByName("id"), 200)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]string{
		"html":    html,
		"excerpt": excerpt,
	})
}

func (s *Server) editDocument(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	doc, err := s.db.EditDocument(ctx.User, params.ByName("id"), body.Title, body.Content)
	if err != nil {
		return err
	}

	ctx.audit("EDIT_DOCUMENT", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) setParticipants(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body participantsBody
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	doc, err := s.db.SetParticipants(ctx.User, params.ByName("id"), body.participants())
	if err != nil {
		return err
	}

	ctx.audit("SET_PARTICIPANTS", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) deleteDocument(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	var id = params.ByName("id")
	if err := s.db.DeleteDocument(ctx.User, id); err != nil {
		return err
	}

	ctx.audit("DELETE_DOCUMENT", "document", id, nil)

	return writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.DocumentDB.GetDocument(params.ByName("id"))
	if err != nil {
		return err
	}

	if !core.CanAccess(doc, ctx.User) {
		return core.ErrUnauthorized
	}

	entries, err := s.db.WorkflowDB.GetHistory(doc.ID)
	if err != nil {
		return err
	}

	var views = make([]historyView, len(entries))
	for i, e := range entries {
		views[i] = historyView{Ts: e.Ts, ActorUID: e.ActorUID, Action: e.Action, Meta: e.Meta}
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) auditTrail(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.DocumentDB.GetDocument(params.ByName("id"))
	if err != nil {
		return err
	}

	if !core.CanAccess(doc, ctx.User) {
		return core.ErrUnauthorized
	}

	entries, err := s.db.AuditDB.GetAuditLogs("document", doc.ID, queryInt(req, "limit"), queryInt(req, "offset"))
	if err != nil {
		return err
	}

	type auditView struct {
		ActorUID  string            `json:"actorUid"`
		Action    string            `json:"action"`
		Ts        int64             `json:"ts"`
		IP        string            `json:"ip"`
		UserAgent string            `json:"userAgent"`
		Meta      map[string]string `json:"meta,omitempty"`
	}

	var views = make([]auditView, len(entries))
	for i, e := range entries {
		views[i] = auditView{ActorUID: e.ActorUID, Action: e.Action, Ts: e.Ts, IP: e.IP, UserAgent: e.UserAgent, Meta: e.Meta}
	}

	return writeJSON(w, http.StatusOK, views)
}
