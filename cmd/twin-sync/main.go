package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pvictorino/twin-sync-golang/pkg/entities"
	"github.com/pvictorino/twin-sync-golang/pkg/gateways/twin"
	"github.com/pvictorino/twin-sync-golang/pkg/logging"
	"github.com/pvictorino/twin-sync-golang/pkg/utils"
)

const defaultSetupFile = "twin_sync_setup.yaml"

func main() {
	setupFile := os.Getenv("TWIN_SYNC_SETUP_FILEPATH")
	if setupFile == "" {
		setupFile = defaultSetupFile
	}

	conf, err := utils.ConfigurationParser(setupFile, entities.IntegrationTwinConfig{})
	if err != nil {
		panic(err)
	}

	log := logging.NewLogrus(conf.LogLevel, os.Stdout).Get("Main")

	integration, err := twin.NewIntegration(conf, log)
	if err != nil {
		log.Fatalln("integration setup failed:", err)
	}

	if conf.MetricsAddress != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(conf.MetricsAddress, nil); err != nil {
				log.Errorln("metrics listener stopped:", err)
			}
		}()
	}

	log.Println("twin sync running")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := integration.Close(); err != nil {
		log.Errorln("shutdown error:", err)
	}
}
