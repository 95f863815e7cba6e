package server

import (
	"path/filepath"

	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/sessionlog"
	"github.com/process-dojo/kiosk/internal/stringutil"
)

type Settings struct {
	Port            int                                  `json:"port"`
	MediaRoot       string                               `json:"media_root"`
	BridgeURL       string                               `json:"bridge_url"`
	BridgeTimeout   int                                  `json:"bridge_timeout"`
	SecurityLevel   int                                  `json:"security_level"`
	MinQuality      int                                  `json:"min_quality"`
	SessionSecret   string                               `json:"session_secret"`
	SessionName     string                               `json:"session_name"`
	SessionTTL      int64                                `json:"session_ttl"`
	LogFile         string                               `json:"log_file,omitempty"`
	Users           map[string]people.AuthenticEmployee  `json:"users,omitempty"`
	EmployeeStore   *people.StoreSettings                `json:"employee_store,omitempty"`
	SessionLogStore *sessionlog.StoreSettings            `json:"session_log_store,omitempty"`
}

func NewDefaultSettings() *Settings {
	return &Settings{
		Port:          8080,
		MediaRoot:     "media",
		BridgeURL:     "http://localhost:5000",
		BridgeTimeout: 5,
		SecurityLevel: 5,
		MinQuality:    50,
		SessionName:   "DOJOSESSION",
		SessionSecret: stringutil.RandomBytesString(32),
		SessionTTL:    28_800,
	}
}

// BiometricDataDir is where templates and previews live; it is not served.
func (s Settings) BiometricDataDir() string {
	return filepath.Join(s.MediaRoot, "biometric_data")
}
