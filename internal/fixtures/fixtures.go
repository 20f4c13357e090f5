// Package fixtures supplies the static test data the scenarios run with:
// user credentials and employee records keyed by symbolic name, plus the
// list of invalid users used for negative login checks.
package fixtures

import (
	"fmt"
	"sort"
	"time"

	"github.com/kuitang/hrm-e2e/internal/errs"
)

// Credentials is a username/password pair.
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Gender is the two-way choice on the personal details form.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Employee is an employee record. Empty optional fields mean "leave
// untouched" when the record is applied to a form.
type Employee struct {
	FirstName     string `json:"firstName" yaml:"firstName"`
	LastName      string `json:"lastName" yaml:"lastName"`
	MiddleName    string `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	EmployeeID    string `json:"employeeId,omitempty" yaml:"employeeId,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty" yaml:"licenseNumber,omitempty"`
	OtherID       string `json:"otherId,omitempty" yaml:"otherId,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty" yaml:"maritalStatus,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty" yaml:"dateOfBirth,omitempty"`
	Gender        Gender `json:"gender,omitempty" yaml:"gender,omitempty"`
	TestField     string `json:"testField,omitempty" yaml:"testField,omitempty"`
}

// DateLayout is the date format of OrangeHRM's default locale, yyyy-dd-mm.
// Employee dates in fixtures are written in this layout.
const DateLayout = "2006-02-01"

// FullName returns "First Last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Provider resolves fixtures by symbolic key. A missing key is an
// errs.NotFound error.
type Provider interface {
	Credentials(userType string) (Credentials, error)
	Employee(employeeType string) (Employee, error)
}

// Set is an in-memory Provider. The zero value is empty and usable.
type Set struct {
	Users     map[string]Credentials `json:"users" yaml:"users"`
	Employees map[string]Employee    `json:"employees" yaml:"employees"`
}

var _ Provider = (*Set)(nil)

// Credentials returns the credentials stored under userType.
func (s *Set) Credentials(userType string) (Credentials, error) {
	creds, ok := s.Users[userType]
	if !ok {
		return Credentials{}, errs.New(errs.NotFound, fmt.Sprintf("no credentials found for user type %q", userType))
	}
	return creds, nil
}

// Employee returns a copy of the employee stored under employeeType.
func (s *Set) Employee(employeeType string) (Employee, error) {
	emp, ok := s.Employees[employeeType]
	if !ok {
		return Employee{}, errs.New(errs.NotFound, fmt.Sprintf("no employee data found for type %q", employeeType))
	}
	return emp, nil
}

// UserTypes returns the credential keys in sorted order.
func (s *Set) UserTypes() []string {
	return sortedKeys(s.Users)
}

// EmployeeTypes returns the employee keys in sorted order.
func (s *Set) EmployeeTypes() []string {
	return sortedKeys(s.Employees)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InvalidUser is a pair used as bad credentials: FirstName is typed as the
// username and LastName as the password.
type InvalidUser struct {
	FirstName string
	LastName  string
}

// InvalidUsers drives the login failure scenarios.
var InvalidUsers = []InvalidUser{
	{FirstName: "John", LastName: "Doe"},
	{FirstName: "Jane", LastName: "Smith"},
	{FirstName: "Admin", LastName: "wrongpassword"},
	{FirstName: "invalid_user", LastName: "admin123"},
}

// validate rejects employee records the personal details form would refuse.
func (s *Set) validate() error {
	for _, key := range s.EmployeeTypes() {
		dob := s.Employees[key].DateOfBirth
		if dob == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, dob); err != nil {
			return errs.New(errs.InvalidArgument,
				fmt.Sprintf("employee %q: dateOfBirth %q is not yyyy-dd-mm", key, dob))
		}
	}
	return nil
}
