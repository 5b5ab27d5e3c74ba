// Package config defines the hydrad command line.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/nexusgame/hydra/internal/cmd"
)

// LogConfig holds the global logging flags.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"HYDRA_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"HYDRA_LOG_FILE"`
	RawFile string `help:"Dump raw sample frames to this file" env:"HYDRA_LOG_RAW_FILE"`
}

// CLI is the root kong grammar.
type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml)" env:"HYDRA_CONFIG" type:"path"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        LogConfig        `embed:"" prefix:"log."`

	Run         cmd.Run           `cmd:"" help:"Run the calibration and event dispatch daemon" default:"withargs"`
	Status      cmd.Status        `cmd:"" help:"Show the state of a running daemon"`
	Enable      cmd.Enable        `cmd:"" help:"Enable hydra input on a running daemon"`
	Disable     cmd.Disable       `cmd:"" help:"Disable hydra input on a running daemon"`
	Recalibrate cmd.Recalibrate   `cmd:"" help:"Clear calibration; the next trigger press captures a new offset"`
	Calibration cmd.Calibration   `cmd:"" help:"Calibration controls of a running daemon"`
	Mode        cmd.Mode          `cmd:"" help:"Switch the input mode of a running daemon"`
	Replay      cmd.Replay        `cmd:"" help:"Stream a recorded session into a running daemon"`
	Config      cmd.ConfigCommand `cmd:"" help:"Configuration file helpers"`
	Install     cmd.Install       `cmd:"" help:"Install hydrad as a system service"`
	Uninstall   cmd.Uninstall     `cmd:"" help:"Remove the hydrad system service"`
}
