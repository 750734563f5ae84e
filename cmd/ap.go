package cmd

import (
	"flag"

	"github.com/offspot/runtime-config/internal/hotspot"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/netifc"
	"github.com/offspot/runtime-config/internal/refdata"
	"github.com/offspot/runtime-config/internal/settings"
)

// RunAP configures the Wi-Fi access point.
func RunAP(args []string) int {
	fs := flag.NewFlagSet("ap", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug output")
	hide := fs.Bool("hide", false, "Hide SSID (clients must know and enter its name to connect)")
	passphrase := fs.String("passphrase", "", "Passphrase to connect to the network. Defaults to Open Network")
	address := fs.String("address", settings.DefaultAddress, "IP address to set on the interface")
	asGateway := fs.Bool("as-gateway", false, "Act as an internet gateway (wired) for AP (wireless) clients")
	tld := fs.String("tld", settings.DefaultTLD, "Top-level domain to use as local domain")
	domain := fs.String("domain", settings.DefaultDomain, "Domain name to use for services")
	welcome := fs.String("welcome", settings.DefaultWelcome, "Additional domain to respond to")
	channel := fs.Int("channel", settings.DefaultChannel, "WiFi channel to use for the network")
	country := fs.String("country", settings.DefaultCountry, "Country code for frequency limitations")
	iface := fs.String("interface", settings.DefaultInterface, "Interface to configure the AP on")
	dhcpRange := fs.String("dhcp-range", "", "DHCP range as start,end,netmask,ttl. Defaults to .100-.240 of the interface network")
	network := fs.String("network", "", "Network to advertise DHCP on. Defaults to the /24 of the address")
	capturedAddress := fs.String("captured-address", settings.DefaultCapturedAddress, "Address spoofed DNS answers resolve to")
	spoofMode := fs.String("spoof", settings.DefaultSpoof, "DNS spoof mode: on, off or auto")
	var dns, otherIfaces, exceptIfaces, nodhcpIfaces multiFlag
	fs.Var(&dns, "dns", "DNS server to advertise via DHCP when gateway (repeatable)")
	fs.Var(&otherIfaces, "other-interfaces", "Additional interface to provide DNS and DHCP on (repeatable)")
	fs.Var(&exceptIfaces, "except-interfaces", "Interface to specifically not listen on (repeatable)")
	fs.Var(&nodhcpIfaces, "nodhcp-interfaces", "Interface to provide DNS but not DHCP on (repeatable)")
	fs.Parse(args)
	setDebug(*debug)

	log := logging.WithComponent("ap")
	if fs.NArg() != 1 {
		log.Error("exactly one SSID argument required")
		return ExitInvalid
	}

	ap := settings.AP{
		SSID:             fs.Arg(0),
		Passphrase:       *passphrase,
		Address:          *address,
		Hide:             *hide,
		AsGateway:        *asGateway,
		TLD:              *tld,
		Domain:           *domain,
		Welcome:          *welcome,
		Channel:          *channel,
		Country:          *country,
		Interface:        *iface,
		DHCPRange:        *dhcpRange,
		Network:          *network,
		DNS:              dns,
		CapturedAddress:  *capturedAddress,
		OtherInterfaces:  otherIfaces,
		ExceptInterfaces: exceptIfaces,
		NoDHCPInterfaces: nodhcpIfaces,
		Spoof:            *spoofMode,
	}
	return applyAP(log, ap)
}

func applyAP(log *logging.Logger, ap settings.AP) int {
	log.Info("configuring WiFi AP", "ssid", ap.SSID)

	p, check := hotspot.Derive(ap, refdata.Countries())
	if !check.OK() {
		return failInvalid(log, check)
	}
	if err := hotspot.Apply(Runner, netifc.Default, p); err != nil {
		return failError(log, "configuring AP failed", "error", err)
	}
	return succeed(log, "wireless AP configured")
}
