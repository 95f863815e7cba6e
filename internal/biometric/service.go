// Package biometric orchestrates enrollment and identification on top of
// the template store, the employee directory, and the device bridge.
package biometric

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/stringutil"
	"github.com/process-dojo/kiosk/internal/templatestore"
)

// Matcher compares two opaque template blobs. Level 0 means the matcher's
// configured default. The bridge client is the production implementation.
type Matcher interface {
	Match(ctx context.Context, template1, template2 []byte, securityLevel int) (bool, error)
}

type Service struct {
	templates     *templatestore.Store
	employees     people.Store
	matcher       Matcher
	securityLevel int
}

func NewService(templates *templatestore.Store, employees people.Store, matcher Matcher, securityLevel int) *Service {
	return &Service{
		templates:     templates,
		employees:     employees,
		matcher:       matcher,
		securityLevel: securityLevel,
	}
}

// BiometricID derives the stable identifier enrollment files are keyed by.
// Deterministic on purpose: re-enrollment overwrites the same files.
func BiometricID(e *people.Employee) string {
	return fmt.Sprintf("BIO_%s_%s", e.EmployeeID, stringutil.NormalizeID(e.Username))
}

// Identify runs the 1:N scan: every enrolled template is compared against
// the probe, in listing order, and the first match wins. Ties between
// multiple matching enrollments are resolved by that order alone.
func (s *Service) Identify(ctx context.Context, probe []byte) (*people.Employee, error) {
	var ids, err = s.templates.ListEnrolled()
	if err != nil {
		return nil, fmt.Errorf("listing enrolled templates: %w", err)
	}

	log.Printf("identify: scanning %d enrolled templates", len(ids))

	for _, biometricID := range ids {
		stored, err := s.templates.LoadTemplate(biometricID)
		if err != nil {
			log.Printf("!!! template for %s unreadable, skipping: %v", biometricID, err)
			continue
		}

		matched, err := s.matcher.Match(ctx, probe, stored, s.securityLevel)
		if err != nil {
			// Abort the scan: a later candidate will fail the same
			// way, and the caller needs the hardware message, not
			// a bogus "not recognized".
			return nil, fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
		}
		if !matched {
			continue
		}

		employee, err := s.employees.LookupByBiometricID(biometricID)
		if err != nil {
			log.Printf("!!! template %s matched but no employee references it: %v", biometricID, err)
			continue
		}
		log.Printf("identify: matched %s (%s)", employee.Username, biometricID)
		return employee, nil
	}

	return nil, ErrNotRecognized
}

// Verify is the 1:1 analogue of Identify for a claimed username.
func (s *Service) Verify(ctx context.Context, username string, probe []byte) (bool, error) {
	var employee, err = s.employees.Lookup(username)
	if err != nil {
		return false, err
	}
	if !employee.Enrolled() {
		return false, ErrNotEnrolled
	}

	stored, err := s.templates.LoadTemplate(employee.BiometricID)
	if err != nil {
		if errors.Is(err, templatestore.ErrNotFound) {
			return false, ErrNotEnrolled
		}
		return false, err
	}

	matched, err := s.matcher.Match(ctx, probe, stored, s.securityLevel)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBridgeUnavailable, err)
	}
	return matched, nil
}

// Enroll stores the captured template and preview for an employee and
// records the biometric ID on their directory entry. Re-enrollment
// overwrites the previous template wholesale.
func (s *Service) Enroll(employee *people.Employee, template, image []byte) (string, error) {
	var biometricID = BiometricID(employee)

	if err := s.templates.Save(biometricID, template, image); err != nil {
		return "", err
	}

	if err := s.employees.SetBiometricID(employee.Username, biometricID); err != nil {
		// Roll the files back so no template exists that the
		// directory does not reference.
		if cleanupErr := s.templates.Delete(biometricID); cleanupErr != nil {
			log.Printf("!!! rollback of %s failed: %v", biometricID, cleanupErr)
		}
		return "", err
	}

	return biometricID, nil
}

// Unenroll removes stored files and clears the directory reference.
// Idempotent: unenrolling a never-enrolled employee is not an error.
func (s *Service) Unenroll(employee *people.Employee) error {
	if employee.BiometricID != "" {
		if err := s.templates.Delete(employee.BiometricID); err != nil {
			return err
		}
	}
	// Also sweep the derived ID, covering directory entries that lost
	// their reference but still have files on disk.
	if derived := BiometricID(employee); derived != employee.BiometricID {
		if err := s.templates.Delete(derived); err != nil {
			return err
		}
	}
	return s.employees.SetBiometricID(employee.Username, "")
}

// PreviewImage returns the stored enrollment preview PNG.
func (s *Service) PreviewImage(employee *people.Employee) ([]byte, error) {
	if !employee.Enrolled() {
		return nil, ErrNotEnrolled
	}
	var image, err = s.templates.LoadImage(employee.BiometricID)
	if err != nil {
		if errors.Is(err, templatestore.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return image, nil
}

// EnrolledCount reports how many identities have a stored template.
func (s *Service) EnrolledCount() int {
	var ids, err = s.templates.ListEnrolled()
	if err != nil {
		log.Printf("!!! listing enrolled templates failed: %v", err)
		return 0
	}
	return len(ids)
}
