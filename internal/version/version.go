// Package version reports the daemon build version.
package version

import (
	"fmt"
	"strings"
)

// Version is set at build time: -ldflags "-X github.com/nexusgame/hydra/internal/version.Version=x.y.z"
var Version = ""

const devVersion = "0.0.1-dev"

// Get returns the build version without a leading "v", or a development
// version when none was linked in.
func Get() (string, error) {
	if Version == "" {
		return devVersion, nil
	}
	v := strings.TrimPrefix(Version, "v")
	base := strings.SplitN(v, "-", 2)[0]
	if !strings.Contains(base, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}
	return v, nil
}

// String is Get with errors folded into the development version.
func String() string {
	v, err := Get()
	if err != nil {
		return devVersion
	}
	return v
}
