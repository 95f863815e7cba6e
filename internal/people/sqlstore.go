package people

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/blockloop/scan/v2"
	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// sqlStore reads the employee directory from PostgreSQL using the queries
// configured in StoreSettings. Config-file users still take precedence via
// the embedded base, which also keeps session handling in one place.
type sqlStore struct {
	*embeddedStore
	dbconn   *sql.DB
	settings *StoreSettings
}

func NewSqlStore(sessionStore sessions.Store, users map[string]AuthenticEmployee, sessionTTL int64, dbs map[string]*sql.DB, settings *StoreSettings) (Store, error) {
	if dbs[settings.URI] == nil {
		dbconn, err := sql.Open("postgres", settings.URI)
		if err != nil {
			return nil, err
		}
		dbs[settings.URI] = dbconn
	}
	return &sqlStore{
		embeddedStore: newEmbeddedStore(sessionStore, users, sessionTTL),
		dbconn:        dbs[settings.URI],
		settings:      settings,
	}, nil
}

func (p *sqlStore) queryEmployee(query, arg string) (*Employee, error) {
	var employee Employee

	log.Printf("SQL: %s; -- %s", query, arg)
	// SELECT username, COALESCE(given_name, '') given_name, COALESCE(family_name, '') family_name,
	// employee_id, COALESCE(plant, '') plant, COALESCE(unit, '') unit, COALESCE(department, '') department,
	// COALESCE(biometric_id, '') biometric_id, is_staff staff
	// FROM employees WHERE lower(username) = lower($1)
	if rows, err := p.dbconn.Query(query, arg); err == nil {
		if err := scan.RowStrict(&employee, rows); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrEmployeeNotFound
			}
			return nil, err
		}
	} else {
		return nil, err
	}
	return &employee, nil
}

func (p *sqlStore) Authenticate(username, password string) (string, error) {
	var realUsername, err = p.embeddedStore.Authenticate(username, password)
	if err == nil {
		return realUsername, nil
	}

	// SELECT username, password_hash FROM employees WHERE lower(username) = lower($1) AND is_staff
	log.Printf("SQL: %s; -- %s", p.settings.CredentialsQuery, username)
	var row = p.dbconn.QueryRow(p.settings.CredentialsQuery, username)
	var passwordHash string
	if err := row.Scan(&realUsername, &passwordHash); err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
			log.Printf("!!! password comparison failed: %v", err)
		} else {
			return realUsername, nil
		}
	} else {
		log.Printf("!!! query for employee failed: %v", err)
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}

	return "", ErrAuthenticationFailed
}

func (p *sqlStore) Lookup(username string) (*Employee, error) {
	if employee, err := p.embeddedStore.Lookup(username); err == nil {
		return employee, nil
	}
	return p.queryEmployee(p.settings.DetailsQuery, username)
}

func (p *sqlStore) LookupByEmployeeID(employeeID string) (*Employee, error) {
	if employee, err := p.embeddedStore.LookupByEmployeeID(employeeID); err == nil {
		return employee, nil
	}
	// same projection as details_query, keyed by employee_id
	return p.queryEmployee(p.settings.EmployeeIDQuery, employeeID)
}

func (p *sqlStore) LookupByBiometricID(biometricID string) (*Employee, error) {
	if employee, err := p.embeddedStore.LookupByBiometricID(biometricID); err == nil {
		return employee, nil
	}
	// same projection as details_query, keyed by biometric_id
	return p.queryEmployee(p.settings.BiometricIDQuery, biometricID)
}

func (p *sqlStore) List() ([]Employee, error) {
	var employees []Employee

	log.Printf("SQL: %s;", p.settings.ListQuery)
	// same projection as details_query, ORDER BY employee_id
	if rows, err := p.dbconn.Query(p.settings.ListQuery); err == nil {
		if err := scan.RowsStrict(&employees, rows); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}

	if embedded, err := p.embeddedStore.List(); err == nil {
		employees = append(embedded, employees...)
	}
	return employees, nil
}

func (p *sqlStore) SetBiometricID(username, biometricID string) error {
	if err := p.embeddedStore.SetBiometricID(username, biometricID); err == nil {
		return nil
	}

	// UPDATE employees SET biometric_id = NULLIF($2, ''), updated_at = now() WHERE lower(username) = lower($1)
	log.Printf("SQL: %s; -- %s, %s", p.settings.SetBiometricID, username, biometricID)
	var result, err = p.dbconn.Exec(p.settings.SetBiometricID, strings.TrimSpace(username), biometricID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (p *sqlStore) Ping() error {
	return p.dbconn.Ping()
}
