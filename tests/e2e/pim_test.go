package e2e

import (
	"context"
	"testing"

	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/orangehrm"
)

func TestPIM_AddMinimalEmployee(t *testing.T) {
	env := setupLive(t)
	hrm, set := env.loggedIn(t)
	ctx := context.Background()

	if _, err := hrm.VerifyEmployeeDetails(ctx, "", ""); !errs.Is(err, errs.FailedPrecondition) {
		t.Fatalf("VerifyEmployeeDetails before any add: err=%v, want FailedPrecondition", err)
	}

	added, err := hrm.AddEmployee(ctx, orangehrm.DefaultEmployeeType)
	if err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}

	ok, err := hrm.VerifyEmployeeAddedSuccessfully(ctx)
	if err != nil {
		t.Fatalf("VerifyEmployeeAddedSuccessfully failed: %v", err)
	}
	if !ok {
		t.Fatal("Employee should be added successfully")
	}
	if !set.AddEmployee.VerifyEmployeeAddedByURL(ctx) {
		t.Error("URL should carry the employee number")
	}

	ok, err = hrm.VerifyEmployeeDetails(ctx, "", "")
	if err != nil {
		t.Fatalf("VerifyEmployeeDetails failed: %v", err)
	}
	if !ok {
		t.Errorf("Details should match %s", added.FullName())
	}

	if _, err := hrm.VerifyEmployeeDetails(ctx, added.FirstName, ""); !errs.Is(err, errs.InvalidArgument) {
		t.Errorf("One-name VerifyEmployeeDetails: err=%v, want InvalidArgument", err)
	}

	if err := hrm.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: added.FirstName}); err != nil {
		t.Fatalf("SearchEmployee failed: %v", err)
	}
	found, err := hrm.VerifySearchResults(ctx, 1)
	if err != nil {
		t.Fatalf("VerifySearchResults failed: %v", err)
	}
	if !found {
		t.Error("Search should return at least 1 result")
	}
}

func TestPIM_SequentialAddsAreUnique(t *testing.T) {
	env := setupLive(t)
	hrm, _ := env.loggedIn(t)
	ctx := context.Background()

	first, err := hrm.AddEmployee(ctx, orangehrm.DefaultEmployeeType)
	if err != nil {
		t.Fatalf("First AddEmployee failed: %v", err)
	}
	second, err := hrm.AddEmployee(ctx, orangehrm.DefaultEmployeeType)
	if err != nil {
		t.Fatalf("Second AddEmployee failed: %v", err)
	}
	if first.FirstName == second.FirstName && first.LastName == second.LastName {
		t.Errorf("Sequential adds share a name: %s", first.FullName())
	}
	last, _ := hrm.LastAdded()
	if last != second {
		t.Errorf("LastAdded = %s, want %s", last.FullName(), second.FullName())
	}
}

func TestPIM_SearchExistingEmployee(t *testing.T) {
	env := setupLive(t)
	hrm, set := env.loggedIn(t)
	ctx := context.Background()

	existing, err := hrm.Employee(ctx, "fullEmployee")
	if err != nil {
		t.Fatalf("Employee fixture: %v", err)
	}
	if err := hrm.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: existing.FirstName}); err != nil {
		t.Fatalf("SearchEmployee failed: %v", err)
	}
	ok, err := hrm.VerifySearchResults(ctx, 1)
	if err != nil {
		t.Fatalf("VerifySearchResults failed: %v", err)
	}
	if !ok {
		t.Error("Search should return at least 1 result")
	}
	if err := set.PIM.VerifySearchResultsVisible(ctx); err != nil {
		t.Errorf("Results table should be visible: %v", err)
	}
}

func TestPIM_EditPersonalDetails(t *testing.T) {
	env := setupLive(t)
	hrm, set := env.loggedIn(t)
	ctx := context.Background()
	form := set.AddEmployee

	edit, err := hrm.Employee(ctx, "fullEmployee")
	if err != nil {
		t.Fatalf("Employee fixture: %v", err)
	}
	if _, err := hrm.AddEmployee(ctx, orangehrm.DefaultEmployeeType); err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}
	if ok, err := hrm.VerifyEmployeeAddedSuccessfully(ctx); err != nil || !ok {
		t.Fatalf("Employee should be added successfully: ok=%v err=%v", ok, err)
	}
	if _, err := form.VerifyPersonalDetailsPage(ctx); err != nil {
		t.Fatalf("Not on the personal details page: %v", err)
	}

	res, err := form.EditPersonalDetails(ctx, edit)
	if err != nil {
		t.Fatalf("EditPersonalDetails failed: %v", err)
	}
	t.Logf("applied=%v skipped=%v", res.Applied, res.Skipped)

	ok, err := form.VerifySuccessMessage(ctx, 0)
	if err != nil {
		t.Fatalf("VerifySuccessMessage failed: %v", err)
	}
	if !ok {
		t.Error("Personal details save should show a success toast")
	}

	license, err := form.LicenseNumberValue(ctx)
	if err != nil {
		t.Fatalf("LicenseNumberValue failed: %v", err)
	}
	if license != edit.LicenseNumber {
		t.Errorf("License number = %q, want %q", license, edit.LicenseNumber)
	}
}

func TestPIM_CannotAddWithoutFirstName(t *testing.T) {
	env := setupLive(t)
	_, set := env.loggedIn(t)
	ctx := context.Background()
	form := set.AddEmployee

	if err := set.Dashboard.NavigateToPIM(ctx); err != nil {
		t.Fatalf("NavigateToPIM failed: %v", err)
	}
	if err := set.PIM.ClickAddEmployee(ctx); err != nil {
		t.Fatalf("ClickAddEmployee failed: %v", err)
	}
	if err := form.EnterLastName(ctx, "TestLast"); err != nil {
		t.Fatalf("EnterLastName failed: %v", err)
	}
	if err := form.ClickSave(ctx); err != nil {
		t.Fatalf("ClickSave failed: %v", err)
	}

	ok, err := form.VerifyRequiredErrorMessage(ctx, 0)
	if err != nil {
		t.Fatalf("VerifyRequiredErrorMessage failed: %v", err)
	}
	if !ok {
		t.Error("Validation error should be displayed")
	}
	if form.VerifyEmployeeAddedByURL(ctx) {
		t.Error("Saving without a first name must not reach the details page")
	}
}

func TestPIM_SearchNonExistentEmployee(t *testing.T) {
	env := setupLive(t)
	hrm, set := env.loggedIn(t)
	ctx := context.Background()

	if err := hrm.SearchEmployee(ctx, orangehrm.SearchCriteria{EmployeeName: "NonExistentEmployee12345"}); err != nil {
		t.Fatalf("SearchEmployee failed: %v", err)
	}
	count, err := set.PIM.SearchResultsCount(ctx)
	if err != nil {
		t.Fatalf("SearchResultsCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 results, got %d", count)
	}
	ok, err := hrm.VerifySearchResults(ctx, 1)
	if err != nil {
		t.Fatalf("VerifySearchResults failed: %v", err)
	}
	if ok {
		t.Error("At-least-one check should fail for an empty result set")
	}
}
