package core

import (
	"strings"
	"time"
)

type Department struct {
	ID        string
	Name      string
	OfficeID  string
	TsCreated int64
}

type DepartmentDB interface {
	GetDepartment(id string) (*Department, error)
	GetDepartments(officeID string) ([]*Department, error) // officeID "" means all
	InsertDepartment(d *Department) error                  // assigns ID
}

// CreateDepartment registers a department, optionally under an office.
func (c *CoreDB) CreateDepartment(actor *User, name, officeID string) (*Department, error) {

	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validationf("missing_name", "department name is required")
	}

	if officeID != "" {
		if _, err := c.OfficeDB.GetOffice(officeID); err != nil {
			return nil, err
		}
	}

	var d = &Department{
		Name:      name,
		OfficeID:  officeID,
		TsCreated: time.Now().Unix(),
	}

	if err := c.DepartmentDB.InsertDepartment(d); err != nil {
		return nil, err
	}

	return d, nil
}

// OfficeDocuments lists documents belonging to the office's departments.
func (c *CoreDB) OfficeDocuments(office *Office, filter DocumentFilter) ([]*Document, error) {

	departments, err := c.DepartmentDB.GetDepartments(office.ID)
	if err != nil {
		return nil, err
	}

	if len(departments) == 0 {
		return []*Document{}, nil
	}

	filter.DepartmentIDs = make([]string, len(departments))
	for i, d := range departments {
		filter.DepartmentIDs[i] = d.ID
	}

	return c.DocumentDB.GetDocuments(filter)
}
