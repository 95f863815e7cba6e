package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/process-dojo/kiosk/internal/biometric"
	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
)

type enrollSaveHandler struct {
	service    *biometric.Service
	employees  people.Store
	minQuality int
}

func (h *enrollSaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var request struct {
		EmployeeID string `json:"employee_id"`
		Template   string `json:"template"`
		Image      string `json:"image"`
		Quality    int    `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if request.EmployeeID == "" || request.Template == "" {
		httputil.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if request.Quality < h.minQuality {
		// A bad enrollment locks the employee out at the next login,
		// so reject here instead of at identification time.
		httputil.Error(w, fmt.Sprintf("capture quality %d below minimum %d, rescan required", request.Quality, h.minQuality), http.StatusBadRequest)
		return
	}

	var template, err = base64.StdEncoding.DecodeString(request.Template)
	if err != nil {
		httputil.Error(w, "template is not valid base64", http.StatusBadRequest)
		return
	}
	var image []byte
	if request.Image != "" {
		if image, err = base64.StdEncoding.DecodeString(request.Image); err != nil {
			httputil.Error(w, "image is not valid base64", http.StatusBadRequest)
			return
		}
	}

	employee, err := h.employees.LookupByEmployeeID(request.EmployeeID)
	if err != nil {
		httputil.Error(w, err.Error(), employeeStatusCode(err))
		return
	}

	biometricID, err := h.service.Enroll(employee, template, image)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("enrolled %s as %s", employee.Username, biometricID)

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Fingerprint enrolled successfully for %s", employee.FullName()),
		"biometric_id": biometricID,
	})
}

func EnrollSaveHandler(service *biometric.Service, employees people.Store, minQuality int) http.Handler {
	return &enrollSaveHandler{service: service, employees: employees, minQuality: minQuality}
}

type enrollDeleteHandler struct {
	service   *biometric.Service
	employees people.Store
}

func (h *enrollDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var request struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if request.EmployeeID == "" {
		httputil.Error(w, "employee ID required", http.StatusBadRequest)
		return
	}

	var employee, err = h.employees.LookupByEmployeeID(request.EmployeeID)
	if err != nil {
		httputil.Error(w, err.Error(), employeeStatusCode(err))
		return
	}

	if err := h.service.Unenroll(employee); err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Fingerprint deleted for %s", employee.FullName()),
	})
}

func EnrollDeleteHandler(service *biometric.Service, employees people.Store) http.Handler {
	return &enrollDeleteHandler{service: service, employees: employees}
}

type enrollmentListHandler struct {
	employees people.Store
}

// ServeHTTP lists every employee with enrollment status for the admin UI.
func (h *enrollmentListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var employees, err = h.employees.List()
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var enrolled int
	var entries = make([]map[string]any, 0, len(employees))
	for _, employee := range employees {
		if employee.Enrolled() {
			enrolled++
		}
		entries = append(entries, map[string]any{
			"username":    employee.Username,
			"full_name":   employee.FullName(),
			"employee_id": employee.EmployeeID,
			"plant":       employee.Plant,
			"unit":        employee.Unit,
			"department":  employee.Department,
			"enrolled":    employee.Enrolled(),
		})
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"employees":      entries,
		"enrolled_count": enrolled,
		"pending_count":  len(employees) - enrolled,
	})
}

func EnrollmentListHandler(employees people.Store) http.Handler {
	return &enrollmentListHandler{employees: employees}
}

type enrollmentImageHandler struct {
	service   *biometric.Service
	employees people.Store
}

// ServeHTTP serves the stored preview PNG for enrollment review. Biometric
// files are deliberately outside any static file route; this is the only
// way to read one.
func (h *enrollmentImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var employee, err = h.employees.LookupByEmployeeID(mux.Vars(r)["employee_id"])
	if err != nil {
		httputil.Error(w, err.Error(), employeeStatusCode(err))
		return
	}

	image, err := h.service.PreviewImage(employee)
	if err != nil {
		if errors.Is(err, biometric.ErrNotEnrolled) {
			httputil.Error(w, err.Error(), http.StatusNotFound)
		} else {
			httputil.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	httputil.NoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(image)
}

func EnrollmentImageHandler(service *biometric.Service, employees people.Store) http.Handler {
	return &enrollmentImageHandler{service: service, employees: employees}
}

func employeeStatusCode(err error) int {
	if errors.Is(err, people.ErrEmployeeNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
