// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DataDog/hearth/pkg/api"
	"github.com/DataDog/hearth/pkg/config"
	"github.com/DataDog/hearth/pkg/integrations"
	"github.com/DataDog/hearth/pkg/integrations/hass"
	"github.com/DataDog/hearth/pkg/integrations/weather"
	"github.com/DataDog/hearth/pkg/monitor"
	"github.com/DataDog/hearth/pkg/sensorbus"
	"github.com/DataDog/hearth/pkg/store"
	"github.com/DataDog/hearth/pkg/store/memory"
	"github.com/DataDog/hearth/pkg/store/postgres"
	"github.com/DataDog/hearth/pkg/util/log"
	"github.com/DataDog/hearth/pkg/version"
)

const shutdownGrace = 5 * time.Second

func start(_ *cobra.Command, _ []string) error {
	mainCtx, mainCtxCancel := context.WithCancel(context.Background())
	defer mainCtxCancel() // Calling cancel twice is safe

	configFound := false
	if len(confPath) != 0 {
		config.Hearth.AddConfigPath(confPath)
		if confErr := config.Load(); confErr != nil {
			log.Error(confErr)
		} else {
			configFound = true
		}
	}
	if !configFound {
		if err := config.Load(); err != nil {
			log.Error(err)
		}
	}

	err := config.SetupLogger(
		loggerName,
		config.Hearth.GetString("log_level"),
		config.Hearth.GetString("log_file"),
		config.Hearth.GetBool("log_format_json"),
		config.Hearth.GetBool("log_to_console"),
	)
	if err != nil {
		log.Criticalf("Unable to setup logger: %s", err)
		return nil
	}
	log.Infof("starting %s", version.Full())

	st, err := openStore(mainCtx)
	if err != nil {
		log.Criticalf("Unable to open store: %s", err)
		return nil
	}
	defer st.Close() //nolint:errcheck

	bus := sensorbus.New(sensorbus.Options{
		HistorySize: config.Hearth.GetInt("sensorbus.history_size"),
		OverrideTTL: config.Hearth.GetDuration("sensorbus.override_ttl"),
		OverrideCap: config.Hearth.GetInt("sensorbus.override_cap"),
	})
	refreshSensors := func() {
		sensors, err := st.ListSensors(mainCtx)
		if err != nil {
			log.Errorf("refreshing sensor index: %v", err)
			return
		}
		bus.SetSensors(sensors)
	}
	st.RegisterReloadListener("sensorbus", refreshSensors)
	refreshSensors()

	registry := integrations.NewRegistry(bus)
	hg := hass.New(st, bus)
	registry.Register(hg)
	if err := hg.Reload(mainCtx); err != nil {
		log.Warnf("loading %s configuration: %v", hass.IntegrationID, err)
	}

	var weatherEngines *weather.Engines
	if config.Hearth.GetBool("weather.enabled") {
		wg := weather.New(st)
		registry.Register(wg)
		if err := wg.Reload(mainCtx); err != nil {
			log.Warnf("loading %s configuration: %v", weather.IntegrationID, err)
		}
		weatherEngines = wg.Data()
	}

	if path := config.Hearth.GetString("integrations_seed_file"); path != "" {
		seed, err := integrations.LoadSeed(path)
		if err != nil {
			log.Errorf("reading seed file %s: %v", path, err)
		} else {
			integrations.ApplySeed(mainCtx, registry, seed)
		}
	}

	monitors := monitor.NewManager(config.Hearth.GetBool("suppress_monitors"))
	for _, g := range registry.All() {
		monitors.Register(g.Monitors()...)
	}
	monitors.Start(mainCtx)

	server := api.NewServer(api.Deps{
		Registry: registry,
		Bus:      bus,
		Monitors: monitors,
		Weather:  weatherEngines,
	})
	server.Start(fmt.Sprintf(":%d", config.Hearth.GetInt("api_port")))

	// Block here until we receive the interrupt signal
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	<-signalCh
	log.Info("shutting down")

	monitors.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warnf("api shutdown: %v", err)
	}
	mainCtxCancel()
	log.Info("See ya!")
	log.Flush()
	return nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch backend := config.Hearth.GetString("database.backend"); backend {
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			Host:     config.Hearth.GetString("database.host"),
			Port:     config.Hearth.GetInt("database.port"),
			User:     config.Hearth.GetString("database.user"),
			Password: config.Hearth.GetString("database.password"),
			Name:     config.Hearth.GetString("database.name"),
			SSLMode:  config.Hearth.GetString("database.sslmode"),
		})
	default:
		log.Infof("using in-memory store (backend %q)", backend)
		return memory.New(), nil
	}
}
