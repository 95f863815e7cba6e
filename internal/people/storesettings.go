package people

type StoreSettings struct {
	URI              string            `json:"uri,omitempty"`
	CredentialsQuery string            `json:"credentials_query,omitempty"`
	DetailsQuery     string            `json:"details_query,omitempty"`
	EmployeeIDQuery  string            `json:"employee_id_query,omitempty"`
	BiometricIDQuery string            `json:"biometric_id_query,omitempty"`
	ListQuery        string            `json:"list_query,omitempty"`
	SetBiometricID   string            `json:"set_biometric_id,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
}
