// Package hostname sets the machine's hostname through systemd and
// keeps the /etc/hosts loopback entry in sync.
package hostname

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/sysrun"
)

var loopbackEntryRegex = regexp.MustCompile(`^127\.0\.1\.1\b`)

// Validate checks a requested hostname.
func Validate(name string) checks.CheckResult {
	return checks.IsValidHostname(name)
}

// Apply sets the hostname and updates the 127.0.1.1 hosts entry. The
// name must already have passed Validate.
func Apply(run sysrun.Runner, name string) error {
	if _, err := run.RunCommand("hostnamectl", "--no-ask-password", "set-hostname", name); err != nil {
		return fmt.Errorf("setting hostname: %w", err)
	}
	if err := patchHosts(brand.Path(brand.HostsPath), name); err != nil {
		return fmt.Errorf("updating hosts file: %w", err)
	}
	logging.WithComponent("hostname").Info("hostname configured", "hostname", name)
	return nil
}

// patchHosts rewrites every 127.0.1.1 entry to the new name, appending
// one when absent.
func patchHosts(path, name string) error {
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(raw) == 0 {
		lines = nil
	}

	entry := "127.0.1.1\t" + name
	found := false
	for i, line := range lines {
		if loopbackEntryRegex.MatchString(line) {
			lines[i] = entry
			found = true
		}
	}
	if !found {
		lines = append(lines, entry)
	}
	return armor.WriteFile(path, strings.Join(lines, "\n")+"\n")
}
