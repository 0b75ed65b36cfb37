package main

import (
	"os"

	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/server"
	"github.com/sirupsen/logrus"
)

// debug runs the server with debug logging, the file watcher on and the
// content file under ./.tmp unless configured otherwise.
func main() {
	cfg := config.LoadConfig()
	cfg.Log.Level = "debug"
	cfg.Watch.Enabled = true

	if os.Getenv("SITE_STORE_PATH") == "" && cfg.Store.Driver == "file" {
		cfg.Store.Path = "./.tmp/site-data.json"
	}

	httpPort := os.Getenv("HTTP_PORT")
	if httpPort != "" {
		cfg.HTTP.Port = httpPort
	}

	config.ConfigureLogger(cfg.Log)

	err := server.Start(cfg)
	if err != nil {
		logrus.Error(err)
		return
	}
}
