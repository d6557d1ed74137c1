package core

import (
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role is a coarse, global user role. Possession of RoleAdmin bypasses
// every other check.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOfficer  Role = "OFFICER"
	RoleReviewer Role = "REVIEWER"
	RoleApprover Role = "APPROVER"
	RoleViewer   Role = "VIEWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOfficer, RoleReviewer, RoleApprover, RoleViewer:
		return true
	}
	return false
}

// RoleSet is an additive set of roles.
type RoleSet []Role

func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

func (rs RoleSet) Add(role Role) RoleSet {
	if rs.Has(role) {
		return rs
	}
	return append(rs, role)
}

// String joins the set for storage, sorted so the representation is stable.
func (rs RoleSet) String() string {
	var names = make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ParseRoles is the inverse of RoleSet.String. Unknown names are skipped.
func ParseRoles(s string) RoleSet {
	var rs RoleSet
	for _, name := range strings.Split(s, ",") {
		var role = Role(strings.TrimSpace(name))
		if role.Valid() {
			rs = rs.Add(role)
		}
	}
	return rs
}

type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Roles     RoleSet
	OfficeID  string // optional membership reference
	TsCreated int64
}

func (u *User) Name() string {
	var name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Roles.Has(RoleAdmin)
}

type UserDB interface {
	GetUser(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetAllUsers(limit, offset int) ([]*User, error)
	InsertUser(u *User) error // assigns u.ID
	UpdateUser(u *User) error
	SetPassword(id string, hash string) error
	Credentials(email string) (uid string, hash string, err error)
}

var ErrLogin = Validationf("login_failed", "wrong email or password")

// Login verifies the password against the stored bcrypt hash. Unknown user
// and wrong password are indistinguishable to the caller.
func (c *CoreDB) Login(email, password string) (*User, error) {

	uid, hash, err := c.UserDB.Credentials(email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrLogin
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrLogin
	}

	return c.UserDB.GetUser(uid)
}

// SetUserPassword hashes and stores a new password.
func (c *CoreDB) SetUserPassword(uid, password string) error {
	if password == "" {
		return Validationf("empty_password", "refusing to set empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return c.UserDB.SetPassword(uid, string(hash))
}
