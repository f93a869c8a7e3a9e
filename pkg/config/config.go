// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package config holds the process-wide configuration of the hub, backed by
// viper. Integration attributes do not live here; they are rows in the store.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/DataDog/hearth/pkg/errors"
	"github.com/DataDog/hearth/pkg/util/log"
)

// DefaultRemoteTimeout bounds every remote HTTP call unless an integration overrides it.
const DefaultRemoteTimeout = 10 * time.Second

// Hearth is the global configuration object.
var Hearth = viper.New()

func init() {
	Hearth.SetConfigName("hearth")
	Hearth.SetEnvPrefix("HEARTH")
	Hearth.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Hearth.AutomaticEnv()

	Hearth.SetDefault("api_port", 5050)
	Hearth.SetDefault("health_port", 0)
	Hearth.SetDefault("log_level", "info")
	Hearth.SetDefault("log_file", "")
	Hearth.SetDefault("log_format_json", false)
	Hearth.SetDefault("log_to_console", true)
	Hearth.SetDefault("timezone", "UTC")
	Hearth.SetDefault("suppress_monitors", false)
	Hearth.SetDefault("suppress_authentication", false)
	Hearth.SetDefault("remote_timeout", DefaultRemoteTimeout)
	Hearth.SetDefault("integrations_seed_file", "")

	Hearth.SetDefault("database.backend", "memory")
	Hearth.SetDefault("database.host", "localhost")
	Hearth.SetDefault("database.port", 5432)
	Hearth.SetDefault("database.user", "hearth")
	Hearth.SetDefault("database.password", "")
	Hearth.SetDefault("database.name", "hearth")
	Hearth.SetDefault("database.sslmode", "disable")

	Hearth.SetDefault("sensorbus.history_size", 5)
	Hearth.SetDefault("sensorbus.override_ttl", 11*time.Second)
	Hearth.SetDefault("sensorbus.override_cap", 100)

	Hearth.SetDefault("weather.enabled", true)
}

// Load reads the config file if one is present in the search path.
// A missing file is not an error; env variables and defaults still apply.
func Load() error {
	if err := Hearth.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.NewConfigf("unable to read config file: %v", err)
	}
	return nil
}

// GetTimezone resolves the configured IANA zone, used to align daily
// aggregation intervals with the user's calendar. Falls back to UTC.
func GetTimezone() *time.Location {
	name := Hearth.GetString("timezone")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("unknown timezone %q, falling back to UTC", name)
		return time.UTC
	}
	return loc
}

// GetRemoteTimeout returns the bound for remote HTTP calls.
func GetRemoteTimeout() time.Duration {
	d := Hearth.GetDuration("remote_timeout")
	if d <= 0 {
		return DefaultRemoteTimeout
	}
	return d
}
