package bridge

import (
	"github.com/mcuadros/go-defaults"
)

// Settings for the fpbridge process. The bridge binds to loopback only;
// it exists so the kiosk browser can reach the scanner, not the network.
type Settings struct {
	Host          string `json:"host" default:"127.0.0.1"`
	Port          int    `json:"port" default:"5000"`
	FramesDir     string `json:"frames_dir"`
	SecurityLevel int    `json:"security_level" default:"5"`
	LogFile       string `json:"log_file,omitempty"`
}

func NewDefaultSettings() *Settings {
	var settings = new(Settings)
	defaults.SetDefaults(settings)
	return settings
}
