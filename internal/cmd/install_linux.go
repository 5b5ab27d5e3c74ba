//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	serviceName = "hydrad.service"
	servicePath = "/etc/systemd/system/hydrad.service"
)

func install(logger *slog.Logger) error {
	if err := unix.Access(filepath.Dir(servicePath), unix.W_OK); err != nil {
		return fmt.Errorf("cannot write %s (run as root): %w", filepath.Dir(servicePath), err)
	}
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}

	if err := os.WriteFile(servicePath, []byte(systemdUnitContent(exePath)), 0o644); err != nil {
		return err
	}
	for _, args := range [][]string{{"daemon-reload"}, {"enable", serviceName}, {"restart", serviceName}} {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("hydrad systemd service installed", "path", servicePath, "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error
	if err := runSystemctl("stop", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := runSystemctl("disable", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("hydrad systemd service removed", "path", servicePath)
	return nil
}

// systemdUnitContent runs the daemon after the network and, for serial
// sources, after udev has created device nodes.
func systemdUnitContent(exePath string) string {
	return fmt.Sprintf(`[Unit]
Description=hydrad motion controller daemon
After=network-online.target systemd-udev-settle.service
Wants=network-online.target

[Service]
Type=simple
ExecStart=%q run
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, exePath, filepath.Dir(exePath))
}

func runSystemctl(args ...string) error {
	output, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
