// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
)

const defaultConfigFile = "./config.yaml"

// configFile picks the YAML file to read. The -config flag wins, then
// DAILYFE_CONFIGFILE, then ./config.yaml or ./config.yml if only that exists.
func configFile() string {
	if flag.Lookup("config") == nil {
		flag.String("config", defaultConfigFile, "Path to a DailyFE configuration file in YAML format.")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	explicit := false

	flag.Visit(func(f *flag.Flag) { explicit = explicit || f.Name == "config" })

	if explicit {
		return flag.Lookup("config").Value.String()
	}

	if path := os.Getenv("DAILYFE_CONFIGFILE"); path != "" {
		return path
	}

	if missing(defaultConfigFile) && !missing("./config.yml") {
		return "./config.yml"
	}

	return defaultConfigFile
}

func missing(path string) bool {
	_, err := os.Stat(path)

	return errors.Is(err, fs.ErrNotExist)
}
