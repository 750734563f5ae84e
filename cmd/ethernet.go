package cmd

import (
	"flag"

	"github.com/offspot/runtime-config/internal/ethernet"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/settings"
)

// RunEthernet configures the wired network.
func RunEthernet(args []string) int {
	fs := flag.NewFlagSet("ethernet", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	networkType := fs.String("type", "", "Network configuration type: dhcp or static")
	address := fs.String("address", "", "IP address to use (static)")
	var routers, dns multiFlag
	fs.Var(&routers, "routers", "Gateway router IP (repeatable)")
	fs.Var(&dns, "dns", "DNS server IP (repeatable)")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("ethernet")
	eth := settings.Ethernet{
		Type:    *networkType,
		Address: *address,
		Routers: routers,
		DNS:     dns,
	}
	return applyEthernet(log, eth)
}

func applyEthernet(log *logging.Logger, eth settings.Ethernet) int {
	log.Info("configuring ethernet", "type", eth.Type)

	if check := ethernet.Validate(eth); !check.OK() {
		return failInvalid(log, check)
	}
	if err := ethernet.Apply(Runner, eth); err != nil {
		return failError(log, "configuring ethernet failed", "error", err)
	}
	return succeed(log, "ethernet configuration applied")
}
