package cmd

import "log/slog"

// Install registers hydrad as a system service running "hydrad run".
type Install struct{}

func (i *Install) Run(logger *slog.Logger) error { return install(logger) }

// Uninstall stops and removes the service.
type Uninstall struct{}

func (u *Uninstall) Run(logger *slog.Logger) error { return uninstall(logger) }
