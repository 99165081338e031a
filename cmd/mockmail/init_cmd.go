package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Rasalas/msg-reader/pkgs/config"
)

const defaultConfigFile = "mockmail.yaml"

func (a *app) handleInit() error {
	configPath := a.configPath
	if configPath == "" {
		p, err := config.GetEnvConfigPath()
		switch {
		case errors.Is(err, config.ErrNoConfig):
			configPath = defaultConfigFile
		case err != nil:
			return err
		default:
			configPath = p
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := config.Save(configPath, config.Example()); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created config file at: %s\n", configPath)
	if a.configPath == "" && os.Getenv(config.EnvConfigPath) == "" {
		fmt.Fprintf(a.out, "Tip: set %s=%s or pass --config to use this config file.\n", config.EnvConfigPath, configPath)
	}
	fmt.Fprintln(a.out, "Please edit the file to point the network sinks at your servers.")
	return nil
}
