package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/ephraimraxy/docflow/core"
	"github.com/ephraimraxy/docflow/upload"
	"github.com/julienschmidt/httprouter"
)

// maxUploadBytes bounds a single version upload.
const maxUploadBytes = 64 << 20

func (s *Server) addVersion(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)

	file, header, err := req.FormFile("file")
	if err != nil {
		return core.Validationf("bad_upload", "could not read uploaded file: %v", err)
	}
	defer file.Close()

	filename, err := upload.CleanFilename(header.Filename)
	if err != nil {
		return core.Validationf("bad_filename", "%v", err)
	}

	var mimeType = header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(filename))
	}

	v, err := s.db.AddVersion(ctx.User, params.ByName("id"), filename, mimeType, req.FormValue("changeSummary"), file)
	if err != nil {
		return err
	}

	ctx.audit("ADD_VERSION", "document", v.DocID, map[string]string{"version": v.Label()})

	return writeJSON(w, http.StatusCreated, newVersionView(v))
}

func (s *Server) listVersions(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.DocumentDB.GetDocument(params.ByName("id"))
	if err != nil {
		return err
	}

	if !core.CanAccess(doc, ctx.User) {
		return core.ErrUnauthorized
	}

	versions, err := s.db.VersionDB.GetVersions(doc.ID)
	if err != nil {
		return err
	}

	var views = make([]versionView, len(versions))
	for i, v := range versions {
		views[i] = newVersionView(v)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) downloadVersion(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	doc, err := s.db.DocumentDB.GetDocument(params.ByName("id"))
	if err != nil {
		return err
	}

	if !core.CanAccess(doc, ctx.User) {
		return core.ErrUnauthorized
	}

	v, err := s.db.VersionDB.GetVersion(params.ByName("versionId"))
	if err != nil {
		return err
	}
	if v.DocID != doc.ID {
		return core.NotFoundf("version does not belong to this document")
	}

	src, err := s.db.Uploads.Open(v.StoragePath)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx.audit("DOWNLOAD_VERSION", "document", doc.ID, map[string]string{"version": v.Label()})

	w.Header().Set("Content-Type", v.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(v.FileSize, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": v.FileName}))

	_, err = io.Copy(w, src)
	return err
}
