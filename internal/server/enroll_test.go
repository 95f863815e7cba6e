package server

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestEnrollSave(t *testing.T) {
	var f = newFixture(t)
	var handler = EnrollSaveHandler(f.service, f.employees, 50)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/biometric/enroll/save/", map[string]any{
		"employee_id": "1001",
		"template":    base64.StdEncoding.EncodeToString([]byte("template-jdoe")),
		"image":       base64.StdEncoding.EncodeToString(make([]byte, 260*300)),
		"quality":     85,
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body)
	}
	var body = decodeBody(t, w)
	if body["success"] != true {
		t.Fatalf("got success %v, want true", body["success"])
	}
	if body["biometric_id"] != "BIO_1001_jdoe" {
		t.Errorf("got biometric_id %v, want BIO_1001_jdoe", body["biometric_id"])
	}

	employee, err := f.employees.Lookup("jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if !employee.Enrolled() {
		t.Error("directory entry not updated")
	}
}

func TestEnrollSaveLowQuality(t *testing.T) {
	var f = newFixture(t)
	var handler = EnrollSaveHandler(f.service, f.employees, 50)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/biometric/enroll/save/", map[string]any{
		"employee_id": "1001",
		"template":    base64.StdEncoding.EncodeToString([]byte("template-jdoe")),
		"quality":     30,
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	employee, err := f.employees.Lookup("jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if employee.Enrolled() {
		t.Error("low quality capture must not enroll")
	}
}

func TestEnrollSaveUnknownEmployee(t *testing.T) {
	var f = newFixture(t)
	var handler = EnrollSaveHandler(f.service, f.employees, 50)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/biometric/enroll/save/", map[string]any{
		"employee_id": "9999",
		"template":    base64.StdEncoding.EncodeToString([]byte("template")),
		"quality":     85,
	}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestEnrollSaveMissingFields(t *testing.T) {
	var f = newFixture(t)
	var handler = EnrollSaveHandler(f.service, f.employees, 50)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/biometric/enroll/save/", map[string]any{
		"employee_id": "1001",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestEnrollDelete(t *testing.T) {
	var f = newFixture(t)
	f.enroll(t, "jdoe", []byte("template-jdoe"))

	var handler = EnrollDeleteHandler(f.service, f.employees)
	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/biometric/delete/", map[string]string{
		"employee_id": "1001",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body)
	}

	employee, err := f.employees.Lookup("jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if employee.Enrolled() {
		t.Error("enrollment reference not cleared")
	}
}

func TestEnrollmentList(t *testing.T) {
	var f = newFixture(t)
	f.enroll(t, "jdoe", []byte("template-jdoe"))

	var handler = EnrollmentListHandler(f.employees)
	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/biometric/enrollment/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var body = decodeBody(t, w)
	if body["enrolled_count"] != float64(1) {
		t.Errorf("got enrolled_count %v, want 1", body["enrolled_count"])
	}
	if body["pending_count"] != float64(1) {
		t.Errorf("got pending_count %v, want 1", body["pending_count"])
	}
	if entries := body["employees"].([]any); len(entries) != 2 {
		t.Errorf("got %d employees, want 2", len(entries))
	}
}

func TestEnrollmentImage(t *testing.T) {
	var f = newFixture(t)

	employee, err := f.employees.Lookup("jdoe")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Enroll(employee, []byte("template-jdoe"), make([]byte, 260*300)); err != nil {
		t.Fatal(err)
	}

	var router = mux.NewRouter()
	router.Handle("/biometric/image/{employee_id}", EnrollmentImageHandler(f.service, f.employees))

	var w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/biometric/image/1001", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("got content type %q, want image/png", got)
	}
}

func TestEnrollmentImageNotEnrolled(t *testing.T) {
	var f = newFixture(t)

	var router = mux.NewRouter()
	router.Handle("/biometric/image/{employee_id}", EnrollmentImageHandler(f.service, f.employees))

	var w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/biometric/image/1001", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}
