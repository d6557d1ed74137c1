package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) createUser(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if !ctx.User.IsAdmin() {
		return core.ErrUnauthorized
	}

	var body struct {
		Email     string   `json:"email"`
		FirstName string   `json:"firstName"`
		LastName  string   `json:"lastName"`
		Password  string   `json:"password"`
		Roles     []string `json:"roles"`
		OfficeID  string   `json:"officeId"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" {
		return core.Validationf("missing_email", "email is required")
	}
	if body.Password == "" {
		return core.Validationf("empty_password", "password is required")
	}

	var roles core.RoleSet
	for _, name := range body.Roles {
		var role = core.Role(name)
		if !role.Valid() {
			return core.Validationf("unknown_role", "unknown role: %s", name)
		}
		roles = roles.Add(role)
	}

	var u = &core.User{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Roles:     roles,
		OfficeID:  body.OfficeID,
		TsCreated: time.Now().Unix(),
	}

	if err := s.db.UserDB.InsertUser(u); err != nil {
		return err
	}
	if err := s.db.SetUserPassword(u.ID, body.Password); err != nil {
		return err
	}

	ctx.audit("CREATE_USER", "user", u.ID, nil)

	return writeJSON(w, http.StatusCreated, newUserView(u))
}

func (s *Server) listUsers(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if !ctx.User.IsAdmin() {
		return core.ErrUnauthorized
	}

	users, err := s.db.UserDB.GetAllUsers(queryInt(req, "limit"), queryInt(req, "offset"))
	if err != nil {
		return err
	}

	var views = make([]userView, len(users))
	for i, u := range users {
		views[i] = newUserView(u)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) setRoles(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if !ctx.User.IsAdmin() {
		return core.ErrUnauthorized
	}

	var body struct {
		Roles []string `json:"roles"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	var roles core.RoleSet
	for _, name := range body.Roles {
		var role = core.Role(name)
		if !role.Valid() {
			return core.Validationf("unknown_role", "unknown role: %s", name)
		}
		roles = roles.Add(role)
	}

	u, err := s.db.UserDB.GetUser(params.ByName("id"))
	if err != nil {
		return err
	}

	u.Roles = roles
	if err := s.db.UserDB.UpdateUser(u); err != nil {
		return err
	}

	ctx.audit("SET_ROLES", "user", u.ID, map[string]string{"roles": roles.String()})

	return writeJSON(w, http.StatusOK, newUserView(u))
}

func (s *Server) createOffice(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		OfficeID   string `json:"officeId"`
		Name       string `json:"name"`
		OfficeCode string `json:"officeCode"`
		Password   string `json:"password"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	office, err := s.db.CreateOffice(ctx.User, body.OfficeID, body.Name, body.OfficeCode, body.Password)
	if err != nil {
		return err
	}

	ctx.audit("CREATE_OFFICE", "office", office.ID, nil)

	return writeJSON(w, http.StatusCreated, newOfficeView(office))
}

func (s *Server) listOffices(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if !ctx.User.IsAdmin() {
		return core.ErrUnauthorized
	}

	offices, err := s.db.OfficeDB.GetAllOffices(queryInt(req, "limit"), queryInt(req, "offset"))
	if err != nil {
		return err
	}

	var views = make([]officeView, len(offices))
	for i, o := range offices {
		views[i] = newOfficeView(o)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) createDepartment(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		Name     string `json:"name"`
		OfficeID string `json:"officeId"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	dep, err := s.db.CreateDepartment(ctx.User, body.Name, body.OfficeID)
	if err != nil {
		return err
	}

	ctx.audit("CREATE_DEPARTMENT", "department", dep.ID, nil)

	return writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        dep.ID,
		"name":      dep.Name,
		"officeId":  dep.OfficeID,
		"createdAt": dep.TsCreated,
	})
}

func (s *Server) sendMessage(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		OfficeID string `json:"officeId"`
		Subject  string `json:"subject"`
		Body     string `json:"body"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	m, err := s.db.SendMessage(ctx.User, body.OfficeID, body.Subject, body.Body)
	if err != nil {
		return err
	}

	ctx.audit("SEND_MESSAGE", "message", m.ID, map[string]string{"officeId": m.OfficeID})

	return writeJSON(w, http.StatusCreated, newMessageView(m, ctx.User.ID))
}
