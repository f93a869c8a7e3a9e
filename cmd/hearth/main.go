// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/DataDog/hearth/pkg/config"
	"github.com/DataDog/hearth/pkg/util/log"
	"github.com/DataDog/hearth/pkg/version"
)

var (
	// hearthCmd is the root command
	hearthCmd = &cobra.Command{
		Use:   "hearth [command]",
		Short: "The hearth home automation hub.",
		Long: `
Hearth keeps a household's devices in one place: it syncs entities from the
connected integrations, polls their sensors, dispatches control commands and
serves the whole picture over an HTTP and websocket API.`,
	}

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the hub",
		Long:  `Runs the hub in the foreground`,
		RunE:  start,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  ``,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Full())
		},
	}

	confPath string
)

// loggerName is the name of the hub logger.
const loggerName config.LoggerName = "CORE"

func init() {
	hearthCmd.AddCommand(startCmd)
	hearthCmd.AddCommand(versionCmd)

	startCmd.Flags().StringVarP(&confPath, "cfgpath", "c", "", "path to folder containing hearth.yaml")
	startCmd.Flags().IntP("port", "p", 0, "listen on this port instead of api_port")
	bindFlag(startCmd.Flags(), "api_port", "port")
}

// bindFlag routes a command line flag into the config, highest precedence
// when set.
func bindFlag(fs *pflag.FlagSet, key, name string) {
	if err := config.Hearth.BindPFlag(key, fs.Lookup(name)); err != nil {
		log.Errorf("binding flag %s: %v", name, err)
	}
}

func main() {
	if err := hearthCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}
