package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) submit(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.SubmitDocument(ctx.User, params.ByName("id"))
	if err != nil {
		return err
	}

	ctx.audit("SUBMIT_FOR_REVIEW", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) requestSignature(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.RequestSignature(ctx.User, params.ByName("id"))
	if err != nil {
		return err
	}

	ctx.audit("REQUEST_SIGNATURE", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) sign(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.SignDocument(ctx.User, params.ByName("id"))
	if err != nil {
		return err
	}

	ctx.audit("SIGN", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) approve(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Notes string `json:"notes"`
	}
	if req.ContentLength > 0 {
		if err := decodeBody(req, &body); err != nil {
			return err
		}
	}

	doc, err := s.db.ApproveDocument(ctx.User, params.ByName("id"), body.Notes)
	if err != nil {
		return err
	}

	ctx.audit("APPROVE", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) reject(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	doc, err := s.db.RejectDocument(ctx.User, params.ByName("id"), body.Reason)
	if err != nil {
		return err
	}

	ctx.audit("REJECT", "document", doc.ID, map[string]string{"reason": body.Reason})

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (s *Server) revise(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.ReviseDocument(ctx.User, params.ByName("id"))
	if err != nil {
		return err
	}

	ctx.audit("REVISE", "document", doc.ID, nil)

	return writeJSON(w, http.StatusOK, newDocumentView(doc))
}
