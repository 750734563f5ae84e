package hotspot

import (
	"os"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// Systemd units re-running the spoof toggle whenever the connectivity
// status file changes.
const (
	spoofToggleService = "toggle-dnsmasq-spoof.service"
	spoofTogglePath    = "toggle-dnsmasq-spoof.path"

	systemdUnitDir = "/etc/systemd/system"
)

var spoofToggleServiceUnit = `[Unit]
Description=Toggle dnsmasq spoof mode based on internet connectivity

[Service]
ExecStart=` + brand.BinaryName + ` toggle-spoof
`

var spoofTogglePathUnit = `[Unit]
Description=Monitor internet connectivity file for changes

[Path]
PathModified=` + brand.InternetStatusPath + `
Unit=toggle-dnsmasq-spoof.service

[Install]
WantedBy=multi-user.target
`

func spoofUnitPath(name string) string {
	return brand.Path(systemdUnitDir + "/" + name)
}

// InstallSpoofToggle writes and enables the path-triggered toggle units
// so auto mode follows connectivity changes.
func InstallSpoofToggle(run sysrun.Runner) error {
	if err := armor.WriteFile(spoofUnitPath(spoofToggleService), spoofToggleServiceUnit); err != nil {
		return err
	}
	if err := armor.WriteFile(spoofUnitPath(spoofTogglePath), spoofTogglePathUnit); err != nil {
		return err
	}
	if err := sysrun.DaemonReload(run); err != nil {
		return err
	}
	return sysrun.EnableNow(run, spoofTogglePath)
}

// RemoveSpoofToggle stops and removes the toggle units. Missing unit
// files are fine: removal must be idempotent.
func RemoveSpoofToggle(run sysrun.Runner) error {
	_, _ = run.RunCommand("systemctl", "stop", spoofTogglePath)
	_, _ = run.RunCommand("systemctl", "disable", spoofTogglePath)
	for _, name := range []string{spoofTogglePath, spoofToggleService} {
		if err := os.Remove(spoofUnitPath(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return sysrun.DaemonReload(run)
}
