package core

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ephraimraxy/docflow/upload"
	"go.uber.org/zap"
)

// CoreDB aggregates the per-concern store interfaces and the external
// collaborators. main assembles it from one backing implementation,
// either sqldb or memdb.
type CoreDB struct {
	DocumentDB
	VersionDB
	WorkflowDB
	TransitionDB
	TaskDB
	AuditDB
	UserDB
	CommentDB
	OfficeDB
	MessageDB
	NotificationDB
	DepartmentDB

	SessionManager *scs.SessionManager
	Uploads        upload.Store
	Logger         *zap.Logger
}

// Init sets up the cookie session manager for user logins. Office
// sessions use their own token table and do not touch scs.
func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string, logger *zap.Logger) {

	if logger == nil {
		logger = zap.NewNop()
	}
	c.Logger = logger

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = false
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour
}
