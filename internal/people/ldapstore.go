package people

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/gorilla/sessions"
)

// ldapStore is a read-only directory backend for plants that keep their
// employee roster in a corporate directory. Enrollment references cannot be
// written back, so installs using it keep biometric IDs in the embedded
// overlay or switch to the SQL store.
type ldapStore struct {
	*embeddedStore
	ldapURL          string
	baseDN           string
	bindUser         string
	bindPassword     string
	attributes       []string
	usernameAttr     string
	givenNameAttr    string
	familyNameAttr   string
	employeeIDAttr   string
	plantAttr        string
	unitAttr         string
	departmentAttr   string
	biometricIDAttr  string
	staffGroupFilter string
	settings         *StoreSettings
}

func NewLdapStore(sessionStore sessions.Store, users map[string]AuthenticEmployee, sessionTTL int64, settings *StoreSettings) (Store, error) {
	var ldapURL, bindUsername, bindPassword string
	if url, err := url.Parse(settings.URI); err == nil {
		if url.User != nil {
			bindUsername = url.User.Username()
			bindPassword, _ = url.User.Password()
		}
		ldapURL = fmt.Sprintf("%s://%s", url.Scheme, url.Host)
	} else {
		return nil, err
	}

	var attributes []string
	for name, value := range settings.Parameters {
		if strings.HasSuffix(name, "_attribute") && value != "" {
			attributes = append(attributes, value)
		}
	}

	return &ldapStore{
		embeddedStore:    newEmbeddedStore(sessionStore, users, sessionTTL),
		ldapURL:          ldapURL,
		baseDN:           settings.Parameters["base_dn"],
		bindUser:         bindUsername,
		bindPassword:     bindPassword,
		attributes:       attributes,
		usernameAttr:     settings.Parameters["username_attribute"],
		givenNameAttr:    settings.Parameters["given_name_attribute"],
		familyNameAttr:   settings.Parameters["family_name_attribute"],
		employeeIDAttr:   settings.Parameters["employee_id_attribute"],
		plantAttr:        settings.Parameters["plant_attribute"],
		unitAttr:         settings.Parameters["unit_attribute"],
		departmentAttr:   settings.Parameters["department_attribute"],
		biometricIDAttr:  settings.Parameters["biometric_id_attribute"],
		staffGroupFilter: settings.Parameters["staff_filter"],
		settings:         settings,
	}, nil
}

func (p *ldapStore) connect() (*ldap.Conn, error) {
	var conn, err = ldap.DialURL(p.ldapURL)
	if err != nil {
		log.Printf("!!! ldap connection error: %v", err)
		return nil, err
	}

	if p.bindUser != "" && p.bindPassword != "" {
		if err = conn.Bind(p.bindUser, p.bindPassword); err != nil {
			log.Printf("!!! ldap bind error: %v", err)
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

func (p *ldapStore) entryToEmployee(conn *ldap.Conn, entry *ldap.Entry) Employee {
	var employee = Employee{
		Username:    entry.GetAttributeValue(p.usernameAttr),
		GivenName:   entry.GetAttributeValue(p.givenNameAttr),
		FamilyName:  entry.GetAttributeValue(p.familyNameAttr),
		EmployeeID:  entry.GetAttributeValue(p.employeeIDAttr),
		Plant:       entry.GetAttributeValue(p.plantAttr),
		Unit:        entry.GetAttributeValue(p.unitAttr),
		Department:  entry.GetAttributeValue(p.departmentAttr),
		BiometricID: entry.GetAttributeValue(p.biometricIDAttr),
	}

	if p.staffGroupFilter != "" {
		// (&(objectClass=groupOfUniqueNames)(cn=kiosk-staff)(uniquemember=%s))
		var staffSearch = ldap.NewSearchRequest(
			p.baseDN,
			ldap.ScopeWholeSubtree,
			ldap.NeverDerefAliases,
			1,
			0,
			false,
			fmt.Sprintf(p.staffGroupFilter, ldap.EscapeFilter(entry.DN)),
			[]string{"dn"},
			nil,
		)
		if results, err := conn.Search(staffSearch); err == nil && len(results.Entries) > 0 {
			employee.Staff = true
		}
	}

	return employee
}

func (p *ldapStore) searchOne(conn *ldap.Conn, filterTemplate, arg string) (*ldap.Entry, error) {
	log.Printf("LDAP: %s; %%s = %s", filterTemplate, arg)
	var search = ldap.NewSearchRequest(
		p.baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		fmt.Sprintf(filterTemplate, ldap.EscapeFilter(arg)),
		p.attributes,
		nil,
	)
	var results, err = conn.Search(search)
	if err != nil {
		return nil, err
	}
	if len(results.Entries) != 1 {
		return nil, ErrEmployeeNotFound
	}
	return results.Entries[0], nil
}

func (p *ldapStore) lookupBy(filterTemplate, arg string) (*Employee, error) {
	var conn, err = p.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entry, err := p.searchOne(conn, filterTemplate, arg)
	if err != nil {
		return nil, err
	}

	var employee = p.entryToEmployee(conn, entry)
	return &employee, nil
}

func (p *ldapStore) Authenticate(username, password string) (string, error) {
	if realUsername, err := p.embeddedStore.Authenticate(username, password); err == nil {
		return realUsername, nil
	}

	var conn, err = p.connect()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// (&(objectClass=person)(uid=%s))
	entry, err := p.searchOne(conn, p.settings.CredentialsQuery, username)
	if err != nil {
		log.Printf("!!! employee not found: %s", username)
		return "", ErrAuthenticationFailed
	}

	if err := conn.Bind(entry.DN, password); err != nil {
		log.Printf("!!! Authenticate failed: %v", err)
		return "", ErrAuthenticationFailed
	}

	return entry.GetAttributeValue(p.usernameAttr), nil
}

func (p *ldapStore) Lookup(username string) (*Employee, error) {
	if employee, err := p.embeddedStore.Lookup(username); err == nil {
		return employee, nil
	}
	// (&(objectClass=person)(uid=%s))
	return p.lookupBy(p.settings.DetailsQuery, username)
}

func (p *ldapStore) LookupByEmployeeID(employeeID string) (*Employee, error) {
	if employee, err := p.embeddedStore.LookupByEmployeeID(employeeID); err == nil {
		return employee, nil
	}
	// (&(objectClass=person)(employeeNumber=%s))
	return p.lookupBy(p.settings.EmployeeIDQuery, employeeID)
}

func (p *ldapStore) LookupByBiometricID(biometricID string) (*Employee, error) {
	if employee, err := p.embeddedStore.LookupByBiometricID(biometricID); err == nil {
		return employee, nil
	}
	if p.settings.BiometricIDQuery == "" || p.biometricIDAttr == "" {
		return nil, ErrEmployeeNotFound
	}
	return p.lookupBy(p.settings.BiometricIDQuery, biometricID)
}

func (p *ldapStore) List() ([]Employee, error) {
	var employees, _ = p.embeddedStore.List()

	var conn, err = p.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// (objectClass=person)
	log.Printf("LDAP: %s;", p.settings.ListQuery)
	var search = ldap.NewSearchRequest(
		p.baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		p.settings.ListQuery,
		p.attributes,
		nil,
	)
	results, err := conn.Search(search)
	if err != nil {
		return nil, err
	}
	for _, entry := range results.Entries {
		employees = append(employees, p.entryToEmployee(conn, entry))
	}

	return employees, nil
}

func (p *ldapStore) SetBiometricID(username, biometricID string) error {
	if err := p.embeddedStore.SetBiometricID(username, biometricID); err == nil {
		return nil
	}
	return ErrReadOnly
}

func (p *ldapStore) Ping() error {
	var conn, err = p.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	return nil
}
