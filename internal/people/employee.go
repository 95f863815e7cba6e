package people

import "strings"

// Employee is a directory entry for one kiosk user.
type Employee struct {
	Username    string `json:"username" sql:"username"`
	GivenName   string `json:"given_name,omitempty" sql:"given_name"`
	FamilyName  string `json:"family_name,omitempty" sql:"family_name"`
	EmployeeID  string `json:"employee_id" sql:"employee_id"`
	Plant       string `json:"plant,omitempty" sql:"plant"`
	Unit        string `json:"unit,omitempty" sql:"unit"`
	Department  string `json:"department,omitempty" sql:"department"`
	BiometricID string `json:"biometric_id,omitempty" sql:"biometric_id"`
	Staff       bool   `json:"staff,omitempty" sql:"staff"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.GivenName + " " + e.FamilyName)
}

func (e Employee) Enrolled() bool {
	return e.BiometricID != ""
}

// AuthenticEmployee extends Employee with a bcrypt hash for staff members
// who may also sign in with a password.
type AuthenticEmployee struct {
	Employee
	PasswordHash string `json:"password_hash,omitempty"`
}
