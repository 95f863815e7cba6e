package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"

	"github.com/hjson/hjson-go/v4"

	"github.com/process-dojo/kiosk/internal/bridge"
	"github.com/process-dojo/kiosk/internal/fileutil"
	"github.com/process-dojo/kiosk/internal/fingerprint"
)

var settings *bridge.Settings

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
	settings = bridge.NewDefaultSettings()

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

	var driver = fingerprint.NewSoftDriver(settings.FramesDir)
	if err = driver.Open(context.Background()); err != nil {
		panic(err)
	}
	defer driver.Close()

	var router = bridge.NewRouter(driver, settings)

	var addr = fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	log.Printf("Listening on http://%s/", addr)
	err = http.ListenAndServe(addr, router)
	if err != nil {
		panic(err)
	}
}
