package main

import (
	"os"
	"strings"

	"github.com/danmuck/snesctl/internal/config"
	"github.com/spf13/cobra"
)

// EnvConfigPath names a config file when --config is not given.
const EnvConfigPath = "SNESCTL_CONFIG"

type globalFlags struct {
	configPath string
	host       string
	port       uint16
	device     string
	name       string
	debug      bool
}

func (f *globalFlags) bind(root *cobra.Command) {
	defaults := config.Default()
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML config file (default $"+EnvConfigPath+")")
	pf.StringVar(&f.host, "host", defaults.Endpoint.Host, "USB2SNES server host")
	pf.Uint16Var(&f.port, "port", defaults.Endpoint.Port, "USB2SNES server port")
	pf.StringVarP(&f.device, "device", "d", "", "device to attach (default first listed)")
	pf.StringVar(&f.name, "name", defaults.ClientName, "client name announced to the server")
	pf.BoolVar(&f.debug, "debug", false, "trace every request and reply")
}

// resolveConfig loads the config file, then applies every flag the user set.
func resolveConfig(f globalFlags, changed func(string) bool) (config.Config, error) {
	path := strings.TrimSpace(f.configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if changed("host") {
		cfg.Endpoint.Host = strings.TrimSpace(f.host)
	}
	if changed("port") {
		cfg.Endpoint.Port = f.port
	}
	if changed("device") {
		cfg.Device = strings.TrimSpace(f.device)
	}
	if changed("name") {
		cfg.ClientName = strings.TrimSpace(f.name)
	}
	if f.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
