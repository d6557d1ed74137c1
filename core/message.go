package core

import (
	"strings"
	"time"
)

// Message is a broadcast or office-targeted memo. Read state is tracked
// per reader key: a real uid, or "office_<officeId>" for office sessions,
// which have no user identity.
type Message struct {
	ID        string
	Subject   string
	Body      string
	OfficeID  string // empty means broadcast
	CreatedBy string
	TsCreated int64
	ReadBy    []string // reader keys
}

// OfficeReaderKey builds the synthetic reader key for an office session.
func OfficeReaderKey(officeID string) string {
	return "office_" + officeID
}

func (m *Message) IsReadBy(readerKey string) bool {
	return contains(m.ReadBy, readerKey)
}

type MessageDB interface {
	GetMessage(id string) (*Message, error)
	GetMessages(officeID string, limit, offset int) ([]*Message, error) // broadcasts plus office-targeted, newest first
	InsertMessage(m *Message) error                                     // assigns ID
	MarkMessageRead(id, readerKey string) error
}

// SendMessage posts a memo to one office, or broadcasts when officeID is
// empty. Restricted to admins and officers.
func (c *CoreDB) SendMessage(actor *User, officeID, subject, body string) (*Message, error) {

	if actor == nil || (!actor.IsAdmin() && !actor.Roles.Has(RoleOfficer)) {
		return nil, ErrUnauthorized
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, Validationf("missing_subject", "subject is required")
	}

	if officeID != "" {
		if _, err := c.OfficeDB.GetOffice(officeID); err != nil {
			return nil, err
		}
	}

	var m = &Message{
		Subject:   subject,
		Body:      body,
		OfficeID:  officeID,
		CreatedBy: actor.ID,
		TsCreated: time.Now().Unix(),
	}

	if err := c.MessageDB.InsertMessage(m); err != nil {
		return nil, err
	}

	return m, nil
}
