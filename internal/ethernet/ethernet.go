// Package ethernet sets the machine's wired network configuration by
// rewriting the tool-owned region of dhcpcd.conf.
package ethernet

import (
	"fmt"
	"strings"
	"time"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/settings"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// Markers delimiting the tool-owned region of dhcpcd.conf.
const (
	StartMarker = "### config-network: start ###"
	EndMarker   = "### config-network: stop ###"
)

// SettleDelay gives dhcpcd time to apply the new lease or address
// before the process returns success.
var SettleDelay = 5 * time.Second

// Validate checks a requested ethernet configuration.
func Validate(eth settings.Ethernet) checks.CheckResult {
	return checks.IsValidEthernetConfig(eth.Type, eth.Address, eth.Routers, eth.DNS)
}

// Render builds the dhcpcd.conf region body for the configuration.
func Render(eth settings.Ethernet) string {
	if eth.Type == "dhcp" {
		return "dhcp"
	}
	return fmt.Sprintf("static ip_address=%s/24\nstatic routers=%s\nstatic domain_name_servers=%s",
		eth.Address, strings.Join(eth.Routers, " "), strings.Join(eth.DNS, " "))
}

// Apply writes the configuration into dhcpcd.conf and restarts dhcpcd.
// The configuration must already have passed Validate.
func Apply(run sysrun.Runner, eth settings.Ethernet) error {
	log := logging.WithComponent("ethernet")

	block := armor.Block{
		Path:  brand.Path(brand.DhcpcdConfPath),
		Start: StartMarker,
		End:   EndMarker,
	}
	// dhcpcd applies un-scoped directives to every interface, so a
	// fresh file gets an interface line ahead of the region
	if err := block.ApplyWith(Render(eth), armor.Options{EnsureInterface: "eth0"}); err != nil {
		return fmt.Errorf("patching dhcpcd.conf: %w", err)
	}
	log.Debug("dhcpcd.conf patched", "type", eth.Type)

	if _, err := run.RunCommand("systemctl", "--no-pager", "restart", "dhcpcd"); err != nil {
		return fmt.Errorf("restarting dhcpcd: %w", err)
	}

	// return once the new configuration had a chance to settle
	log.Debug("waiting for dhcpcd to settle")
	time.Sleep(SettleDelay)

	log.Info("ethernet configuration applied", "type", eth.Type)
	return nil
}
