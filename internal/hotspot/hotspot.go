// Package hotspot configures the Wi-Fi access point: hostapd for the
// radio, dnsmasq for DHCP and local DNS, a static address on the AP
// interface, kernel routing and the persisted firewall rules.
package hotspot

import (
	"fmt"
	"os"
	"strings"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/firewall"
	"github.com/offspot/runtime-config/internal/logging"
	"github.com/offspot/runtime-config/internal/netcalc"
	"github.com/offspot/runtime-config/internal/netifc"
	"github.com/offspot/runtime-config/internal/refdata"
	"github.com/offspot/runtime-config/internal/settings"
	"github.com/offspot/runtime-config/internal/spoof"
	"github.com/offspot/runtime-config/internal/sysrun"
)

// Params is a validated hotspot configuration: the requested settings
// plus the derived network and DHCP range.
type Params struct {
	settings.AP

	Network   string
	DHCPRange string
}

// Derive fills the network and DHCP range from the AP address when not
// requested explicitly, then validates the whole configuration.
func Derive(ap settings.AP, countries refdata.CountryTable) (Params, checks.CheckResult) {
	p := Params{AP: ap.WithDefaults(), Network: ap.Network, DHCPRange: ap.DHCPRange}

	if check := checks.IsValidIPv4(p.Address, true); !check.OK() {
		return p, check
	}
	if p.Network == "" {
		network, err := netcalc.DefaultNetworkFor(p.Address)
		if err != nil {
			return p, checks.Fail("deriving network for %s: %s", p.Address, err)
		}
		p.Network = network
	}
	if p.DHCPRange == "" {
		r, err := netcalc.DefaultRangeFor(p.Address)
		if err != nil {
			return p, checks.Fail("deriving DHCP range for %s: %s", p.Address, err)
		}
		p.DHCPRange = r.String()
	}

	check := checks.IsValidAPConfig(checks.APParams{
		SSID:             p.SSID,
		Hide:             p.Hide,
		Passphrase:       p.Passphrase,
		Address:          p.Address,
		AsGateway:        p.AsGateway,
		Spoof:            p.Spoof,
		TLD:              p.TLD,
		Domain:           p.Domain,
		Welcome:          p.Welcome,
		CapturedAddress:  p.CapturedAddress,
		Channel:          p.Channel,
		Country:          p.Country,
		Interface:        p.Interface,
		DHCPRange:        p.DHCPRange,
		Network:          p.Network,
		DNS:              p.DNS,
		OtherInterfaces:  p.OtherInterfaces,
		ExceptInterfaces: p.ExceptInterfaces,
		NoDHCPInterfaces: p.NoDHCPInterfaces,
	}, countries)
	return p, check
}

// RenderHostapd builds the hostapd.conf contents.
func RenderHostapd(p Params) string {
	ignoreBroadcast := "0"
	if p.Hide {
		ignoreBroadcast = "1"
	}
	wpa2 := ""
	if p.Passphrase != "" {
		wpa2 = fmt.Sprintf(`
# use WPA
auth_algs=1
# wpa version
wpa=2
# wpa passwd
wpa_passphrase=%s
# wpa encryption
wpa_key_mgmt=WPA-PSK
wpa_pairwise=TKIP
rsn_pairwise=CCMP
`, p.Passphrase)
	}
	return fmt.Sprintf(`
# interface name
interface=%s

# socket access
ctrl_interface=/var/run/hostapd
ctrl_interface_group=0

# wlan card driver
driver=nl80211
# wifi ssid
ssid=%s
utf8_ssid=1
country_code=%s
# wifi mode (g for g and n)
hw_mode=g
# wifi channel
channel=%d
# MAC address access control (0 = accept by default)
macaddr_acl=0
# dont hide the SSID
ignore_broadcast_ssid=%s
%s
ieee80211n=1
wmm_enabled=1
`, p.Interface, p.SSID, p.Country, p.Channel, ignoreBroadcast, wpa2)
}

// RenderDnsmasq builds the dnsmasq.conf contents. otherRanges maps each
// other-interface to the DHCP range derived from its current address.
func RenderDnsmasq(p Params, otherRanges map[string]string) string {
	var b strings.Builder

	b.WriteString("\n# interface to listen on\n")
	fmt.Fprintf(&b, "interface=%s\n", p.Interface)
	for _, iface := range p.OtherInterfaces {
		fmt.Fprintf(&b, "interface=%s\n", iface)
	}
	for _, iface := range p.NoDHCPInterfaces {
		fmt.Fprintf(&b, "interface=%s\n", iface)
	}
	for _, iface := range p.ExceptInterfaces {
		fmt.Fprintf(&b, "except-interface=%s\n", iface)
	}

	fmt.Fprintf(&b, "\ndhcp-range=%s\n", p.DHCPRange)
	for _, iface := range p.OtherInterfaces {
		if r, ok := otherRanges[iface]; ok {
			fmt.Fprintf(&b, "dhcp-range=%s\n", r)
		}
	}
	for _, iface := range p.NoDHCPInterfaces {
		fmt.Fprintf(&b, "no-dhcp-interface=%s\n", iface)
	}

	b.WriteString("\nexpand-hosts\nbogus-priv\n")
	fmt.Fprintf(&b, "domain=%s,%s,local\n", p.TLD, p.Network)
	b.WriteString("\n")
	fmt.Fprintf(&b, "address=/%s/%s\n", p.WelcomeFQDN(), p.Address)
	fmt.Fprintf(&b, "address=/%s/%s\n", p.FQDN(), p.Address)

	// upstream resolvers only make sense with an internet uplink
	if p.AsGateway {
		for _, server := range p.DNS {
			fmt.Fprintf(&b, "server=%s\n", server)
		}
	}
	b.WriteString("no-hosts\n")
	fmt.Fprintf(&b, "conf-file=%s\n", brand.Path(brand.DnsmasqSpoofConfPath))
	return b.String()
}

// RenderInterfaces builds the interfaces.d stanza persisting the static
// address across reboots.
func RenderInterfaces(iface, address, netmask string) string {
	return fmt.Sprintf(`
allow-hotplug %s
iface %s inet static
address %s
netmask %s
`, iface, iface, address, netmask)
}

// deriveOtherRanges computes a DHCP range per other-interface from the
// address each one currently holds. Interfaces without an address are
// skipped with a warning rather than failing the whole run.
func deriveOtherRanges(ifc netifc.Interfacer, ifaces []string) map[string]string {
	log := logging.WithComponent("hotspot")
	out := make(map[string]string, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := ifc.IPv4Addrs(iface)
		if err != nil || len(addrs) == 0 {
			log.Warn("no address on interface, skipping its DHCP range", "interface", iface, "error", err)
			continue
		}
		// strip prefix length
		addr := addrs[0]
		if i := strings.IndexByte(addr, '/'); i >= 0 {
			addr = addr[:i]
		}
		r, err := netcalc.DefaultRangeFor(addr)
		if err != nil {
			log.Warn("cannot derive range", "interface", iface, "address", addr, "error", err)
			continue
		}
		out[iface] = r.String()
	}
	return out
}

// writeDnsmasqChecked writes the dnsmasq configuration through a
// syntax-checked candidate file so a bad render can never brick the
// resolver.
func writeDnsmasqChecked(run sysrun.Runner, path, content string) error {
	candidate, err := os.CreateTemp("", "dnsmasq-*.conf")
	if err != nil {
		return fmt.Errorf("creating candidate conf: %w", err)
	}
	defer os.Remove(candidate.Name())
	if _, err := candidate.WriteString(content); err != nil {
		candidate.Close()
		return fmt.Errorf("writing candidate conf: %w", err)
	}
	candidate.Close()

	if err := sysrun.CheckDnsmasqConf(run, candidate.Name()); err != nil {
		return err
	}
	return armor.WriteFile(path, content)
}

// Apply configures the whole AP stack from validated parameters.
func Apply(run sysrun.Runner, ifc netifc.Interfacer, p Params) error {
	log := logging.WithComponent("hotspot")

	// fail before touching any file if the radio is not there
	present, err := ifc.Exists(p.Interface)
	if err != nil {
		return fmt.Errorf("checking interface %s: %w", p.Interface, err)
	}
	if !present {
		return fmt.Errorf("no such interface: %s", p.Interface)
	}

	sysrun.UnblockWifi(run)
	log.Debug("wireless unblocked")

	if err := armor.WriteFile(brand.Path(brand.HostapdConfPath), RenderHostapd(p)); err != nil {
		return fmt.Errorf("writing hostapd.conf: %w", err)
	}
	if err := sysrun.RestartOrStart(run, "hostapd"); err != nil {
		return fmt.Errorf("restarting hostapd: %w", err)
	}
	log.Debug("hostapd configured and restarted")

	if err := assignAddress(ifc, p); err != nil {
		return err
	}
	log.Debug("address assigned", "interface", p.Interface, "address", p.Address)

	// only an unconditional "on" enables spoofing here; auto mode is
	// aligned later by the connectivity-driven toggle
	mode, _ := spoof.ParseMode(p.Spoof)
	decision := spoof.Disabled
	if mode == spoof.ModeOn {
		decision = spoof.Enabled
	}
	spoofPath := brand.Path(brand.DnsmasqSpoofConfPath)
	if err := spoof.Apply(spoofPath, p.CapturedAddress, decision); err != nil {
		return fmt.Errorf("writing spoof conf: %w", err)
	}

	otherRanges := deriveOtherRanges(ifc, p.OtherInterfaces)
	dnsmasqPath := brand.Path(brand.DnsmasqConfPath)
	if err := writeDnsmasqChecked(run, dnsmasqPath, RenderDnsmasq(p, otherRanges)); err != nil {
		return fmt.Errorf("writing dnsmasq.conf: %w", err)
	}
	if err := sysrun.RestartOrStart(run, "dnsmasq"); err != nil {
		return fmt.Errorf("restarting dnsmasq: %w", err)
	}
	log.Debug("dnsmasq configured and restarted")

	if err := enableRouting(run); err != nil {
		return fmt.Errorf("enabling routing: %w", err)
	}

	if p.AsGateway {
		if err := firewall.EnableMasqueradeFor(run, "eth0"); err != nil {
			return err
		}
	} else {
		if err := firewall.DisableMasquerade(); err != nil {
			return err
		}
	}

	if p.AsGateway || len(p.OtherInterfaces) > 0 || len(p.NoDHCPInterfaces) > 0 {
		if err := firewall.EnableForwardingFor(run, p.Interface); err != nil {
			return err
		}
	} else {
		if err := firewall.DisableForwarding(); err != nil {
			return err
		}
	}

	if mode == spoof.ModeAuto {
		if err := InstallSpoofToggle(run); err != nil {
			return fmt.Errorf("installing spoof toggle: %w", err)
		}
		// align with current connectivity right away
		_ = sysrun.RestartOrStart(run, spoofToggleService)
	} else {
		if err := RemoveSpoofToggle(run); err != nil {
			return fmt.Errorf("removing spoof toggle: %w", err)
		}
	}

	log.Info("wireless AP configured", "ssid", p.SSID, "interface", p.Interface)
	return nil
}

func assignAddress(ifc netifc.Interfacer, p Params) error {
	content := RenderInterfaces(p.Interface, p.Address, "255.255.255.0")
	if err := armor.WriteFile(brand.Path(brand.InterfacesPath), content); err != nil {
		return fmt.Errorf("writing interfaces file: %w", err)
	}
	if err := ifc.EnsureIPv4(p.Interface, p.Address+"/24"); err != nil {
		return fmt.Errorf("assigning %s to %s: %w", p.Address, p.Interface, err)
	}
	return nil
}

func enableRouting(run sysrun.Runner) error {
	path := brand.Path(brand.SysctlForwardPath)
	if err := armor.WriteFile(path, "net.ipv4.ip_forward=1\n"); err != nil {
		return err
	}
	_, err := run.RunCommand("sysctl", "-p")
	return err
}
