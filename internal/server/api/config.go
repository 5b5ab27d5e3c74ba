package api

import "time"

// ServerConfig represents the control API configuration of the run command.
type ServerConfig struct {
	Addr              string        `help:"Control API listen address" default:":7341" env:"HYDRA_API_ADDR"`
	Password          string        `help:"Control API password; empty disables authentication unless --api.auth is set" env:"HYDRA_API_PASSWORD"`
	Auth              bool          `help:"Require authentication, generating a key file when no password is given" default:"false" env:"HYDRA_API_AUTH"`
	ConnectionTimeout time.Duration `help:"Deadline for reading a request line" default:"30s" env:"HYDRA_API_CONNECTION_TIMEOUT"`
}
