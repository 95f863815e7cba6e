package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/hjson/hjson-go/v4"

	"github.com/process-dojo/kiosk/internal/biometric"
	"github.com/process-dojo/kiosk/internal/bridgeclient"
	"github.com/process-dojo/kiosk/internal/fileutil"
	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/server"
	"github.com/process-dojo/kiosk/internal/sessionlog"
	"github.com/process-dojo/kiosk/internal/templatestore"
)

var settings *server.Settings

func main() {
	var err error
	var configFilename string
	var saveConfig bool

	log.SetOutput(os.Stdout)

	flag.StringVar(&configFilename, "config", "", "config file name")
	flag.BoolVar(&saveConfig, "save", false, "save config and exit")
	flag.Parse()

	configFilename = fileutil.ProbeSettingsFilename(configFilename)

	// Set defaults
	settings = server.NewDefaultSettings()

	configBytes, err := os.ReadFile(configFilename)
	if err == nil {
		if err = hjson.Unmarshal(configBytes, settings); err != nil {
			panic(err)
		}
	}

	if saveConfig {
		log.Printf("Saving config file %s", configFilename)
		configBytes, _ := hjson.Marshal(settings)
		if err := os.WriteFile(configFilename, configBytes, 0644); err != nil {
			panic(err)
		}
		os.Exit(0)
	}

	if settings.LogFile != "" {
		logWriter, err := rotatelogs.New(
			settings.LogFile+".%Y%m%d",
			rotatelogs.WithLinkName(settings.LogFile),
			rotatelogs.WithMaxAge(14*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			panic(err)
		}
		log.SetOutput(logWriter)
	}

	var sessionStore = sessions.NewCookieStore([]byte(settings.SessionSecret))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.MaxAge = 0

	var dbs = make(map[string]*sql.DB)

	var employeeStore people.Store
	if settings.EmployeeStore != nil {
		if strings.HasPrefix(settings.EmployeeStore.URI, "postgresql:") {
			if employeeStore, err = people.NewSqlStore(sessionStore, settings.Users, settings.SessionTTL, dbs, settings.EmployeeStore); err != nil {
				panic(err)
			}
		} else if strings.HasPrefix(settings.EmployeeStore.URI, "ldap:") || strings.HasPrefix(settings.EmployeeStore.URI, "ldaps:") {
			if employeeStore, err = people.NewLdapStore(sessionStore, settings.Users, settings.SessionTTL, settings.EmployeeStore); err != nil {
				panic(err)
			}
		} else {
			panic(errors.New("unsupported or empty store uri: " + settings.EmployeeStore.URI))
		}
	} else {
		employeeStore = people.NewEmbeddedStore(sessionStore, settings.Users, settings.SessionTTL)
	}

	var sessionLog sessionlog.Store
	if settings.SessionLogStore != nil {
		if sessionLog, err = sessionlog.NewSqlStore(dbs, settings.SessionLogStore); err != nil {
			panic(err)
		}
	} else {
		sessionLog = sessionlog.NewMemoryStore()
	}

	templates, err := templatestore.New(settings.BiometricDataDir())
	if err != nil {
		panic(err)
	}

	var bridge = bridgeclient.New(settings.BridgeURL, time.Duration(settings.BridgeTimeout)*time.Second)
	var bioService = biometric.NewService(templates, employeeStore, bridge, settings.SecurityLevel)

	var router = mux.NewRouter()

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, "not found", http.StatusNotFound)
	})
	router.Handle("/health", server.HealthHandler(employeeStore, sessionLog)).
		Methods(http.MethodGet)
	router.Handle("/login", server.LoginHandler(employeeStore, sessionLog, sessionStore, settings.SessionName)).
		Methods(http.MethodPost)
	router.Handle("/biometric/authenticate/", server.AuthenticateHandler(bioService, sessionLog, sessionStore, settings.SessionName, "/")).
		Methods(http.MethodPost)
	router.Handle("/biometric/logout/", server.LogoutHandler(sessionLog, sessionStore, settings.SessionName)).
		Methods(http.MethodGet, http.MethodPost)
	router.Handle("/biometric/device-status/", server.DeviceStatusHandler(bridge, bioService)).
		Methods(http.MethodGet)
	router.Handle("/biometric/enroll/save/", server.RequireStaff(employeeStore, settings.SessionName,
		server.EnrollSaveHandler(bioService, employeeStore, settings.MinQuality))).
		Methods(http.MethodPost)
	router.Handle("/biometric/delete/", server.RequireStaff(employeeStore, settings.SessionName,
		server.EnrollDeleteHandler(bioService, employeeStore))).
		Methods(http.MethodPost)
	router.Handle("/biometric/enrollment/", server.RequireStaff(employeeStore, settings.SessionName,
		server.EnrollmentListHandler(employeeStore))).
		Methods(http.MethodGet)
	router.Handle("/biometric/image/{employee_id}", server.RequireStaff(employeeStore, settings.SessionName,
		server.EnrollmentImageHandler(bioService, employeeStore))).
		Methods(http.MethodGet)
	router.Handle("/biometric/sessions/", server.RequireStaff(employeeStore, settings.SessionName,
		server.SessionListHandler(sessionLog))).
		Methods(http.MethodGet)

	log.Printf("Listening on http://localhost:%d/", settings.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", settings.Port), router)
	if err != nil {
		panic(err)
	}
}
