package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) login(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	user, err := s.db.Login(body.Email, body.Password)
	if err != nil {
		return err
	}

	// renew the session token on privilege change
	if err := s.db.SessionManager.RenewToken(req.Context()); err != nil {
		return err
	}
	s.db.SessionManager.Put(req.Context(), "uid", user.ID)

	ctx.User = user
	ctx.audit("LOGIN", "user", user.ID, nil)

	return writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) logout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if err := s.db.SessionManager.Destroy(req.Context()); err != nil {
		return err
	}

	ctx.audit("LOGOUT", "user", ctx.User.ID, nil)

	return writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) listNotifications(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	notifications, err := s.db.NotificationDB.GetNotifications(ctx.User.ID, queryInt(req, "limit"), queryInt(req, "offset"))
	if err != nil {
		return err
	}

	var views = make([]notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = newNotificationView(n)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) readNotification(w http.ResponseWriter, _ *http.Request, ctx *context, params httprouter.Params) error {

	if err := s.db.ReadNotification(ctx.User, params.ByName("id")); err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
