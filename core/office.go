package core

import (
	"context"
	"time"

	"github.com/ephraimraxy/docflow/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Office is an organizational unit with its own password-gated dashboard
// access path, parallel to user accounts.
type Office struct {
	ID           string
	OfficeID     string // business key, distinct from the row id
	Name         string
	OfficeCode   string
	PasswordHash string // bcrypt
	TsCreated    int64
}

// OfficeSession is a time-limited bearer token. Logout deactivates it;
// the sweeper removes expired and inactive rows later.
type OfficeSession struct {
	Token     string
	OfficeID  string // Office.ID
	IssuedAt  int64
	ExpiresAt int64
	IsActive  bool
}

// SessionLifetime is the fixed office session expiry.
const SessionLifetime = 24 * time.Hour

type OfficeDB interface {
	GetOffice(id string) (*Office, error)
	GetOfficeByCode(code string) (*Office, error)
	GetAllOffices(limit, offset int) ([]*Office, error)
	InsertOffice(o *Office) error // assigns o.ID
	InsertSession(s *OfficeSession) error
	GetSession(token string) (*OfficeSession, error)
	DeactivateSession(token string) error
	DeleteStaleSessions(now int64) (int, error) // expired or inactive
}

// ErrOfficeSession deliberately collapses unknown, inactive and expired
// into one message, so callers can not enumerate tokens.
var ErrOfficeSession = ErrUnauthorized.withMessage("office_session_invalid", "invalid or expired session")

func (e *Error) withMessage(code, msg string) *Error {
	return &Error{Kind: e.Kind, Code: code, Msg: msg}
}

// OfficeLogin checks officeCode and password and issues a session token.
// Credential failures are indistinguishable from each other.
func (c *CoreDB) OfficeLogin(officeCode, password string) (*Office, *OfficeSession, error) {

	office, err := c.OfficeDB.GetOfficeByCode(officeCode)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, ErrLogin
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(office.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrLogin
	}

	token, err := util.RandomString32()
	if err != nil {
		return nil, nil, err
	}

	var now = time.Now()
	var session = &OfficeSession{
		Token:     token,
		OfficeID:  office.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(SessionLifetime).Unix(),
		IsActive:  true,
	}

	if err := c.OfficeDB.InsertSession(session); err != nil {
		return nil, nil, err
	}

	return office, session, nil
}

// ValidateOfficeSession resolves a token to its office. Unknown token,
// deactivated session and expired session all fail identically.
func (c *CoreDB) ValidateOfficeSession(token string) (*Office, *OfficeSession, error) {

	if token == "" {
		return nil, nil, ErrOfficeSession
	}

	session, err := c.OfficeDB.GetSession(token)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, ErrOfficeSession
		}
		return nil, nil, err
	}

	if !session.IsActive || time.Now().Unix() >= session.ExpiresAt {
		return nil, nil, ErrOfficeSession
	}

	office, err := c.OfficeDB.GetOffice(session.OfficeID)
	if err != nil {
		return nil, nil, err
	}

	return office, session, nil
}

// OfficeLogout deactivates the session. The row is kept until the sweeper
// removes it.
func (c *CoreDB) OfficeLogout(token string) error {
	if _, _, err := c.ValidateOfficeSession(token); err != nil {
		return err
	}
	return c.OfficeDB.DeactivateSession(token)
}

// CreateOffice registers an office with a bcrypt-hashed dashboard password.
func (c *CoreDB) CreateOffice(actor *User, officeID, name, officeCode, password string) (*Office, error) {

	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if officeCode == "" || password == "" {
		return nil, Validationf("missing_credentials", "office code and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var office = &Office{
		OfficeID:     officeID,
		Name:         name,
		OfficeCode:   officeCode,
		PasswordHash: string(hash),
		TsCreated:    time.Now().Unix(),
	}

	if err := c.OfficeDB.InsertOffice(office); err != nil {
		return nil, err
	}

	return office, nil
}

// SweepOfficeSessions removes expired and inactive sessions on a fixed
// interval until the context is cancelled.
func (c *CoreDB) SweepOfficeSessions(ctx context.Context, interval time.Duration) {

	var ticker = time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.OfficeDB.DeleteStaleSessions(time.Now().Unix())
			if err != nil {
				c.Logger.Error("office session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				c.Logger.Info("swept office sessions", zap.Int("deleted", n))
			}
		}
	}
}
