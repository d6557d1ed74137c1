// Package api exposes the document workflow as a JSON HTTP API.
package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Server struct {
	db     *core.CoreDB
	logger *zap.Logger
}

// context carries the resolved caller identity through one request.
type context struct {
	User      *core.User
	IP        string
	UserAgent string
	db        *core.CoreDB
}

// audit records a state-changing action after it succeeded.
func (c *context) audit(action, targetType, targetID string, meta map[string]string) {
	var actor = ""
	if c.User != nil {
		actor = c.User.ID
	}
	c.db.Audit(actor, action, targetType, targetID, c.IP, c.UserAgent, meta)
}

// NewRouter assembles the route table, the request logger and the user
// session middleware into one handler.
func NewRouter(db *core.CoreDB, logger *zap.Logger) http.Handler {

	var s = &Server{db: db, logger: logger}
	var router = httprouter.New()

	// user account auth
	router.POST("/login", s.handle(false, s.login))
	router.POST("/logout", s.handle(true, s.logout))

	// documents
	router.POST("/documents", s.handle(true, s.createDocument))
	router.GET("/documents", s.handle(true, s.listDocuments))
	router.GET("/documents/:id", s.handle(true, s.getDocument))
	router.GET("/documents/:id/render", s.handle(true, s.renderDocument))
	router.PATCH("/documents/:id", s.handle(true, s.editDocument))
	router.DELETE("/documents/:id", s.handle(true, s.deleteDocument))
	router.PUT("/documents/:id/participants", s.handle(true, s.setParticipants))

	// versions
	router.POST("/documents/:id/versions", s.handle(true, s.addVersion))
	router.GET("/documents/:id/versions", s.handle(true, s.listVersions))
	router.GET("/documents/:id/versions/:versionId/download", s.handle(true, s.downloadVersion))

	// lifecycle transitions
	router.POST("/documents/:id/submit", s.handle(true, s.submit))
	router.POST("/documents/:id/request-signature", s.handle(true, s.requestSignature))
	router.POST("/documents/:id/sign", s.handle(true, s.sign))
	router.POST("/documents/:id/approve", s.handle(true, s.approve))
	router.POST("/documents/:id/reject", s.handle(true, s.reject))
	router.POST("/documents/:id/revise", s.handle(true, s.revise))
	router.GET("/documents/:id/history", s.handle(true, s.history))
	router.GET("/documents/:id/audit", s.handle(true, s.auditTrail))

	// comments
	router.POST("/documents/:id/comments", s.handle(true, s.addComment))
	router.GET("/documents/:id/comments", s.handle(true, s.listComments))

	// tasks
	router.GET("/tasks", s.handle(true, s.listTasks))
	router.POST("/tasks/:id/done", s.handle(true, s.completeTask))

	// notifications
	router.GET("/notifications", s.handle(true, s.listNotifications))
	router.POST("/notifications/:id/read", s.handle(true, s.readNotification))

	// admin
	router.POST("/users", s.handle(true, s.createUser))
	router.GET("/users", s.handle(true, s.listUsers))
	router.PATCH("/users/:id/roles", s.handle(true, s.setRoles))
	router.POST("/offices", s.handle(true, s.createOffice))
	router.GET("/offices", s.handle(true, s.listOffices))
	router.POST("/departments", s.handle(true, s.createDepartment))
	router.POST("/messages", s.handle(true, s.sendMessage))

	// office-scoped path, parallel to user accounts
	router.POST("/office/login", s.handle(false, s.officeLogin))
	router.POST("/office/logout", s.handle(false, s.officeLogout))
	router.GET("/office/documents", s.handle(false, s.officeDocuments))
	router.GET("/office/messages", s.handle(false, s.officeMessages))
	router.POST("/office/messages/:id/read", s.handle(false, s.officeReadMessage))

	return db.SessionManager.LoadAndSave(s.logRequests(router))
}

// logRequests is the outermost middleware: one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {

		var start = time.Now()
		var recorder = &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, req)

		s.logger.Info("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", clientIP(req)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// handle adapts a handler func, resolving the logged-in user from the
// cookie session and mapping returned errors to JSON responses.
func (s *Server) handle(requireUser bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			IP:        clientIP(req),
			UserAgent: req.Header.Get("User-Agent"),
			db:        s.db,
		}

		if uid := s.db.SessionManager.GetString(req.Context(), "uid"); uid != "" {
			u, err := s.db.UserDB.GetUser(uid)
			if err == nil {
				ctx.User = u
			}
			// a stale session resolves to no user
		}

		if requireUser && ctx.User == nil {
			writeError(w, core.ErrUnauthorized)
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			writeError(w, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {

	var status int
	switch core.KindOf(err) {
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindUnauthorized:
		status = http.StatusForbidden
	case core.KindStateConflict:
		status = http.StatusConflict
	case core.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	var msg = err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error" // don't leak storage details
	}

	writeJSON(w, status, map[string]errorBody{"error": {Code: core.CodeOf(err), Message: msg}})
}

func decodeBody(req *http.Request, v interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return core.Validationf("bad_json", "could not decode request body: %v", err)
	}
	return nil
}

func queryInt(req *http.Request, key string) int {
	n, _ := strconv.Atoi(req.URL.Query().Get(key))
	return n
}
