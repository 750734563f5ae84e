// Package firewall manages the persisted iptables rule files for the
// hotspot: NAT masquerade towards the uplink and traffic forwarding for
// the wireless clients. Rules are applied live through iptables and
// persisted as iptables-restore files; disabling only truncates the
// persisted file, live rules last until reboot.
package firewall

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/sysrun"
)

const (
	masqueradeRules = "offspot-masquerade.rules"
	forwardingRules = "offspot-forwarding.rules"
)

// MasqueradeRulesPath returns the persisted masquerade rules file path.
func MasqueradeRulesPath() string {
	return filepath.Join(brand.Path(brand.IptablesDir), masqueradeRules)
}

// ForwardingRulesPath returns the persisted forwarding rules file path.
func ForwardingRulesPath() string {
	return filepath.Join(brand.Path(brand.IptablesDir), forwardingRules)
}

// EnableMasqueradeFor adds and persists a NAT masquerade rule so client
// traffic exits through the uplink interface.
func EnableMasqueradeFor(run sysrun.Runner, iface string) error {
	rule := []string{"-A", "POSTROUTING", "-o", iface, "-j", "MASQUERADE"}
	args := append([]string{"-t", "nat"}, rule...)
	if _, err := run.RunCommand("iptables", args...); err != nil {
		return fmt.Errorf("inserting masquerade rule: %w", err)
	}
	content := fmt.Sprintf("*nat\n%s\nCOMMIT\n", strings.Join(rule, " "))
	if err := armor.WriteFile(MasqueradeRulesPath(), content); err != nil {
		return fmt.Errorf("persisting masquerade rules: %w", err)
	}
	logging.WithComponent("firewall").Debug("masquerade enabled", "interface", iface)
	return nil
}

// DisableMasquerade truncates the persisted masquerade ruleset.
func DisableMasquerade() error {
	return armor.WriteFile(MasqueradeRulesPath(), "")
}

// EnableForwardingFor adds and persists filter rules accepting all
// traffic in and out of the wireless interface.
func EnableForwardingFor(run sysrun.Runner, iface string) error {
	ruleIn := []string{"-A", "FORWARD", "-i", iface, "-j", "ACCEPT"}
	ruleOut := []string{"-A", "FORWARD", "-o", iface, "-j", "ACCEPT"}
	for _, rule := range [][]string{ruleIn, ruleOut} {
		args := append([]string{"-t", "filter"}, rule...)
		if _, err := run.RunCommand("iptables", args...); err != nil {
			return fmt.Errorf("inserting forwarding rule: %w", err)
		}
	}
	content := fmt.Sprintf("*filter\n%s\n%s\nCOMMIT\n",
		strings.Join(ruleIn, " "), strings.Join(ruleOut, " "))
	if err := armor.WriteFile(ForwardingRulesPath(), content); err != nil {
		return fmt.Errorf("persisting forwarding rules: %w", err)
	}
	logging.WithComponent("firewall").Debug("forwarding enabled", "interface", iface)
	return nil
}

// DisableForwarding truncates the persisted forwarding ruleset.
func DisableForwarding() error {
	return armor.WriteFile(ForwardingRulesPath(), "")
}

// RestoreAll reloads every persisted ruleset: through the
// iptables-restore systemd unit when the image ships one, otherwise by
// running iptables-restore per rules file.
func RestoreAll(run sysrun.Runner, rulesGlob func() ([]string, error)) error {
	if _, err := run.RunCommand("systemctl", "--no-pager", "cat", "iptables-restore"); err == nil {
		return sysrun.RestartOrStart(run, "iptables-restore")
	}

	paths, err := rulesGlob()
	if err != nil {
		return fmt.Errorf("listing rules files: %w", err)
	}
	for _, p := range paths {
		if err := sysrun.RestoreIptables(run, p); err != nil {
			return err
		}
	}
	return nil
}

// RulesFiles lists the persisted *.rules files under the rules dir.
func RulesFiles() ([]string, error) {
	return filepath.Glob(filepath.Join(brand.Path(brand.IptablesDir), "*.rules"))
}
