package people

import (
	"errors"
	"testing"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

func testUsers(t *testing.T) map[string]AuthenticEmployee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]AuthenticEmployee{
		"jdoe": {
			Employee: Employee{
				Username:   "jdoe",
				GivenName:  "Jane",
				FamilyName: "Doe",
				EmployeeID: "1001",
				Department: "Maintenance",
			},
		},
		"Admin": {
			Employee: Employee{
				Username:   "admin",
				EmployeeID: "0001",
				Staff:      true,
			},
			PasswordHash: string(hash),
		},
	}
}

func newTestStore(t *testing.T) Store {
	return NewEmbeddedStore(sessions.NewCookieStore([]byte("test")), testUsers(t), 3600)
}

func TestAuthenticate(t *testing.T) {
	var store = newTestStore(t)

	username, err := store.Authenticate("ADMIN", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if username != "admin" {
		t.Errorf("got %q, want %q", username, "admin")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	var store = newTestStore(t)

	if _, err := store.Authenticate("admin", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("got %v, want ErrAuthenticationFailed", err)
	}
}

func TestAuthenticateNoPasswordHash(t *testing.T) {
	var store = newTestStore(t)

	// jdoe has no password hash and must never authenticate.
	if _, err := store.Authenticate("jdoe", ""); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("got %v, want ErrAuthenticationFailed", err)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	var store = newTestStore(t)

	employee, err := store.Lookup("JDoe")
	if err != nil {
		t.Fatal(err)
	}
	if employee.FullName() != "Jane Doe" {
		t.Errorf("got %q, want %q", employee.FullName(), "Jane Doe")
	}

	if _, err := store.Lookup("nobody"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("got %v, want ErrEmployeeNotFound", err)
	}
}

func TestLookupByEmployeeID(t *testing.T) {
	var store = newTestStore(t)

	employee, err := store.LookupByEmployeeID("1001")
	if err != nil {
		t.Fatal(err)
	}
	if employee.Username != "jdoe" {
		t.Errorf("got %q, want %q", employee.Username, "jdoe")
	}

	if _, err := store.LookupByEmployeeID("9999"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("got %v, want ErrEmployeeNotFound", err)
	}
}

func TestSetBiometricID(t *testing.T) {
	var store = newTestStore(t)

	if err := store.SetBiometricID("jdoe", "BIO_1001_jdoe"); err != nil {
		t.Fatal(err)
	}

	employee, err := store.LookupByBiometricID("BIO_1001_jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if employee.Username != "jdoe" || !employee.Enrolled() {
		t.Errorf("unexpected employee %+v", employee)
	}

	// Clearing removes the reference again.
	if err := store.SetBiometricID("jdoe", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LookupByBiometricID("BIO_1001_jdoe"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("got %v, want ErrEmployeeNotFound", err)
	}
}

func TestSetBiometricIDUnknownEmployee(t *testing.T) {
	var store = newTestStore(t)

	if err := store.SetBiometricID("nobody", "BIO_X"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("got %v, want ErrEmployeeNotFound", err)
	}
}

func TestListSortedByEmployeeID(t *testing.T) {
	var store = newTestStore(t)

	employees, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(employees) != 2 {
		t.Fatalf("got %d employees, want 2", len(employees))
	}
	if employees[0].EmployeeID != "0001" || employees[1].EmployeeID != "1001" {
		t.Errorf("got order %s, %s; want 0001, 1001", employees[0].EmployeeID, employees[1].EmployeeID)
	}
}
