package suite

import (
	"context"
	"fmt"

	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/orangehrm"
)

// Tags used by the catalogue.
const (
	TagSmoke      = "@smoke"
	TagRegression = "@regression"
)

// NonExistentEmployee is a name no demo instance contains.
const NonExistentEmployee = "NonExistentEmployee12345"

// Catalogue returns every scenario: one login failure per invalid user,
// then the PIM scenarios.
func Catalogue() []Scenario {
	var out []Scenario
	for _, user := range fixtures.InvalidUsers {
		out = append(out, loginFailure(user))
	}
	return append(out,
		addMinimalEmployee(),
		searchExistingEmployee(),
		editPersonalDetails(),
		addWithoutFirstName(),
		searchNonExistentEmployee(),
	)
}

func loginFailure(user fixtures.InvalidUser) Scenario {
	return Scenario{
		Name: fmt.Sprintf("User %s %s fails to login", user.FirstName, user.LastName),
		Tags: []string{TagSmoke, TagRegression},
		Body: func(ctx context.Context, s *Session) error {
			login := s.Pages.Login
			if err := s.Step(ctx, "Attempt login with invalid credentials", func(ctx context.Context) error {
				if err := login.NavigateToLogin(ctx); err != nil {
					return err
				}
				return login.Login(ctx, user.FirstName, user.LastName)
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify error message is displayed", func(ctx context.Context) error {
				ok, err := login.VerifyErrorMessage(ctx)
				if err != nil {
					return err
				}
				return s.Check(ok, "login error banner should be visible")
			})
		},
	}
}

// loginRequired logs in as the valid user and fails the scenario unless
// the dashboard loads.
func loginRequired(ctx context.Context, s *Session) error {
	ok, err := s.HRM.Login(ctx, orangehrm.DefaultUserType)
	if err != nil {
		return err
	}
	return s.Check(ok, "login should succeed")
}

// loginAttempted logs in without judging the outcome; the scenario's own
// steps decide.
func loginAttempted(ctx context.Context, s *Session) error {
	_, err := s.HRM.Login(ctx, orangehrm.DefaultUserType)
	return err
}

func logout(ctx context.Context, s *Session) error {
	return s.HRM.Logout(ctx)
}

// addAndVerify adds a minimal employee and checks the save landed.
func addAndVerify(ctx context.Context, s *Session) (fixtures.Employee, error) {
	emp, err := s.HRM.AddEmployee(ctx, orangehrm.DefaultEmployeeType)
	if err != nil {
		return fixtures.Employee{}, err
	}
	ok, err := s.HRM.VerifyEmployeeAddedSuccessfully(ctx)
	if err != nil {
		return emp, err
	}
	return emp, s.Check(ok, "employee should be added successfully")
}

func addMinimalEmployee() Scenario {
	return Scenario{
		Name:   "Add New Employee with Minimal Details",
		Tags:   []string{TagSmoke, TagRegression},
		Before: loginRequired,
		After:  logout,
		Body: func(ctx context.Context, s *Session) error {
			var added fixtures.Employee
			if err := s.Step(ctx, "Add new employee with minimal details", func(ctx context.Context) error {
				var err error
				added, err = s.HRM.AddEmployee(ctx, orangehrm.DefaultEmployeeType)
				return err
			}); err != nil {
				return err
			}
			if err := s.Step(ctx, "Verify employee added successfully", func(ctx context.Context) error {
				ok, err := s.HRM.VerifyEmployeeAddedSuccessfully(ctx)
				if err != nil {
					return err
				}
				if err := s.Check(ok, "employee should be added successfully"); err != nil {
					return err
				}
				ok, err = s.HRM.VerifyEmployeeDetails(ctx, "", "")
				if err != nil {
					return err
				}
				return s.Check(ok, fmt.Sprintf("employee details should match: %s", added.FullName()))
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify employee appears in search results", func(ctx context.Context) error {
				if err := s.HRM.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: added.FirstName}); err != nil {
					return err
				}
				ok, err := s.HRM.VerifySearchResults(ctx, 1)
				if err != nil {
					return err
				}
				return s.Check(ok, "search should return at least 1 result")
			})
		},
	}
}

func searchExistingEmployee() Scenario {
	return Scenario{
		Name:   "Search and Validate Existing Employee",
		Tags:   []string{TagRegression},
		Before: loginRequired,
		After:  logout,
		Body: func(ctx context.Context, s *Session) error {
			existing, err := s.HRM.Employee(ctx, "fullEmployee")
			if err != nil {
				return err
			}
			if err := s.Step(ctx, "Search for employee by name", func(ctx context.Context) error {
				return s.HRM.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: existing.FirstName})
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify search results are accurate", func(ctx context.Context) error {
				ok, err := s.HRM.VerifySearchResults(ctx, 1)
				if err != nil {
					return err
				}
				if err := s.Check(ok, "search should return at least 1 result"); err != nil {
					return err
				}
				return s.Pages.PIM.VerifySearchResultsVisible(ctx)
			})
		},
	}
}

func editPersonalDetails() Scenario {
	return Scenario{
		Name:   "Edit Employee Personal Details",
		Tags:   []string{TagSmoke},
		Slow:   true,
		Before: loginRequired,
		After:  logout,
		Body: func(ctx context.Context, s *Session) error {
			edit, err := s.HRM.Employee(ctx, "fullEmployee")
			if err != nil {
				return err
			}
			form := s.Pages.AddEmployee
			if err := s.Step(ctx, "Add new employee for editing", func(ctx context.Context) error {
				if _, err := addAndVerify(ctx, s); err != nil {
					return err
				}
				ok, err := form.VerifyPersonalDetailsPage(ctx)
				if err != nil {
					return err
				}
				return s.Check(ok, "should be on the personal details page")
			}); err != nil {
				return err
			}
			if err := s.Step(ctx, "Edit employee personal details", func(ctx context.Context) error {
				_, err := form.EditPersonalDetails(ctx, edit)
				return err
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify changes are saved correctly", func(ctx context.Context) error {
				ok, err := form.VerifySuccessMessage(ctx, 0)
				if err != nil {
					return err
				}
				if err := s.Check(ok, "personal details should be saved"); err != nil {
					return err
				}
				license, err := form.LicenseNumberValue(ctx)
				if err != nil {
					return err
				}
				return s.Equal(edit.LicenseNumber, license, "license number should read back")
			})
		},
	}
}

func addWithoutFirstName() Scenario {
	return Scenario{
		Name:   "Cannot add employee without first name",
		Tags:   []string{TagSmoke, TagRegression},
		Before: loginAttempted,
		After:  logout,
		Body: func(ctx context.Context, s *Session) error {
			form := s.Pages.AddEmployee
			if err := s.Step(ctx, "Navigate to Add Employee page", func(ctx context.Context) error {
				if err := s.Pages.Dashboard.NavigateToPIM(ctx); err != nil {
					return err
				}
				return s.Pages.PIM.ClickAddEmployee(ctx)
			}); err != nil {
				return err
			}
			if err := s.Step(ctx, "Try to save without first name", func(ctx context.Context) error {
				if err := form.EnterLastName(ctx, "TestLast"); err != nil {
					return err
				}
				return form.ClickSave(ctx)
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify validation error appears", func(ctx context.Context) error {
				ok, err := form.VerifyRequiredErrorMessage(ctx, 0)
				if err != nil {
					return err
				}
				if err := s.Check(ok, "validation error should be displayed"); err != nil {
					return err
				}
				return s.Check(!form.VerifyEmployeeAddedByURL(ctx), "should stay on the creation form")
			})
		},
	}
}

func searchNonExistentEmployee() Scenario {
	return Scenario{
		Name:   "Search with non-existent employee returns no results",
		Tags:   []string{TagRegression},
		Before: loginAttempted,
		After:  logout,
		Body: func(ctx context.Context, s *Session) error {
			if err := s.Step(ctx, "Search for non-existent employee", func(ctx context.Context) error {
				return s.HRM.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: NonExistentEmployee})
			}); err != nil {
				return err
			}
			return s.Step(ctx, "Verify no results found", func(ctx context.Context) error {
				count, err := s.Pages.PIM.SearchResultsCount(ctx)
				if err != nil {
					return err
				}
				if err := s.Equal(0, count, "should return 0 results for non-existent employee"); err != nil {
					return err
				}
				ok, err := s.HRM.VerifySearchResults(ctx, 1)
				if err != nil {
					return err
				}
				return s.Check(!ok, "at-least-one check should fail for an empty result set")
			})
		},
	}
}
