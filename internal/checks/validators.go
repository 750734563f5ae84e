package checks

import (
	"net"
	"regexp"
	"strings"

	"github.com/offspot/runtime-config/internal/netcalc"
	"github.com/offspot/runtime-config/internal/refdata"
)

// UnrestrictedCountryCode is the reserved regulatory domain meaning
// "least-restrictive set of frequencies allowed everywhere". It is not an
// ISO-3166 code and is accepted independently of the ISO table.
const UnrestrictedCountryCode = "00"

var (
	// hostname labels: 1-63 chars of [A-Za-z0-9-], no leading/trailing dash
	hostnameLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

	// an SSID must not start with !#;+]/" or tab and never contain +]/" or tab
	ssidRegex = regexp.MustCompile(`^[^!#;+\]/"\t][^+\]/"\t]{0,31}$`)

	// WPA2 passphrases: 8-63 printable Basic Latin characters
	passphraseRegex = regexp.MustCompile(`^[\x20-\x7e]{8,63}$`)

	// hotspot TLDs: letter first, then letters/digits/dashes
	tldRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-]*$`)

	// interface names as udev assigns them: wlan0, eth0, enx0123...
	ifaceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]+[0-9]+$`)

	// cheap timezone shape check before the database lookup
	timezoneRegex = regexp.MustCompile(`^([a-zA-Z0-9\-\_\/]){1,80}$`)

	// dotted-decimal shape check; rejects CIDR/hostmask notations that a
	// lenient parser would otherwise accept
	dottedDecimalRegex = regexp.MustCompile(`^[0-9\.]+$`)

	forbiddenTLDs = []string{"example", "invalid", "local", "localhost", "onion", "test"}

	validSpoofValues = []string{"on", "off", "auto", "true", "false", "yes", "no"}
)

// Firmwares lists the selectable firmware variants per WiFi chipset.
var Firmwares = map[string][]string{
	"brcm43455": {
		"raspios",
		"supports-19_2021-11-30",
		"supports-24_2021-10-05_noap+sta",
		"supports-32_2015-03-01_unreliable",
	},
	"brcm43430": {
		"raspios",
		"supports-30_2018-09-28",
	},
}

// IsValidIPv4 reports whether s is a valid dotted-quad IPv4 literal.
// With usable set, the address must also be assignable to a host:
// not the network or broadcast address of its implied /24, and not in
// the unspecified/loopback/link-local/multicast/reserved ranges.
func IsValidIPv4(s string, usable bool) CheckResult {
	if !dottedDecimalRegex.MatchString(s) {
		return Fail("Incorrect format")
	}

	ip, ok := netcalc.ParseIPv4(s)
	if !ok {
		return Fail("Not a valid IPv4: `%s`", s)
	}

	if usable {
		network := netcalc.SlashTwentyFourOf(ip)
		if ip.Equal(network.IP) {
			return Fail("Network address not accepted")
		}
		if ip.Equal(netcalc.BroadcastOf(network)) {
			return Fail("Broadcast address not accepted")
		}
		if ip.IsUnspecified() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
			ip.IsMulticast() || ip[0] >= 240 {
			return Fail("Unauthorized network")
		}
	}
	return Pass()
}

// IsValidNetwork reports whether network is a valid CIDR the hotspot may
// advertise on, and that withAddress belongs to it. allowAny permits
// special-purpose ranges (loopback, link-local, multicast).
func IsValidNetwork(network, withAddress string, allowAny bool) CheckResult {
	ip, n, err := net.ParseCIDR(network)
	if err != nil || ip.To4() == nil {
		return Fail("Invalid network `%s`", network)
	}
	// reject host bits set below the prefix, same as a strict parser
	if !ip.Equal(n.IP) {
		return Fail("Invalid network `%s`", network)
	}

	if ones, _ := n.Mask.Size(); ones > 31 {
		return Fail("Not enough hosts in network `%s`", network)
	}

	base := n.IP.To4()
	if !allowAny &&
		(base.IsUnspecified() || base.IsLoopback() || base.IsLinkLocalUnicast() ||
			base.IsMulticast() || base[0] >= 240) {
		return Fail("Unauthorized network")
	}

	if check := IsValidIPv4(withAddress, true); !check.OK() {
		return Fail("with_address is not a valid IPv4")
	}
	addr, _ := netcalc.ParseIPv4(withAddress)
	if !n.Contains(addr) {
		return Fail("Network is not compatible with address")
	}

	return Pass()
}

// ParseDHCPRange validates a start,end,netmask,ttl range string against
// its host address and returns the parsed range. On failure the first
// failing CheckResult is returned verbatim (fail-fast, no aggregation).
func ParseDHCPRange(rangeStr, withAddress string) (netcalc.Range, CheckResult) {
	var zero netcalc.Range

	if strings.Count(rangeStr, ",") != 3 {
		return zero, Fail("Incorrect range-string format")
	}
	parts := strings.Split(rangeStr, ",")
	startStr, endStr, netmaskStr, ttl := parts[0], parts[1], parts[2], parts[3]

	if !IsValidIPv4(startStr, true).OK() {
		return zero, Fail("Range start is not a valid IPv4: `%s`", startStr)
	}
	start, _ := netcalc.ParseIPv4(startStr)
	if !IsValidIPv4(endStr, true).OK() {
		return zero, Fail("Range end is not a valid IPv4")
	}
	end, _ := netcalc.ParseIPv4(endStr)
	// a netmask is an IP address but not a host-usable one
	if !IsValidIPv4(netmaskStr, false).OK() {
		return zero, Fail("Range netmask is not a valid IPv4")
	}
	netmask, _ := netcalc.ParseIPv4(netmaskStr)
	if !IsValidIPv4(withAddress, true).OK() {
		return zero, Fail("Range host address is not valid IPv4")
	}
	host, _ := netcalc.ParseIPv4(withAddress)

	// prevent common mistakes
	if start.Equal(end) {
		return zero, Fail("Start and end of range are identical")
	}
	if start.Equal(host) {
		return zero, Fail("Range start cannot be same as host")
	}
	if end.Equal(host) {
		return zero, Fail("Range end cannot be same as host")
	}

	if !netcalc.IsNetmask(netmask) {
		return zero, Fail("Range netmask is not a valid netmask")
	}
	network := netcalc.NetworkOf(start, netmask)
	if !network.Contains(end) {
		return zero, Fail("Range end is incorrect for netmask")
	}
	if !network.Contains(host) {
		return zero, Fail("Range network is different from host network")
	}
	if netcalc.ToUint32(start) > netcalc.ToUint32(end) {
		return zero, Fail("Range start is after end")
	}

	// host must be on the network but does not have to be in the range
	nbHosts := netcalc.HostsBetween(start, end, host)

	if len(ttl) < 2 {
		return zero, Fail("Missing DHCP lease-time")
	}
	if ttl != "infinite" {
		suffix := ttl[len(ttl)-1]
		switch suffix {
		case 's', 'm', 'h', 'd', 'w':
		default:
			return zero, Fail("Incorrect DHCP lease-time suffix `%c`", suffix)
		}
		digits := ttl[:len(ttl)-1]
		if digits == "" || strings.Trim(digits, "0123456789") != "" {
			return zero, Fail("Incorrect DHCP lease-time value %s", ttl)
		}
	}

	return netcalc.Range{
		Address: host,
		Start:   start,
		End:     end,
		Netmask: netmask,
		TTL:     ttl,
	}, Passf("%d available addresses", nbHosts)
}

// IsValidDHCPRange reports whether rangeStr is a valid hotspot DHCP
// range for withAddress.
func IsValidDHCPRange(rangeStr, withAddress string) CheckResult {
	_, check := ParseDHCPRange(rangeStr, withAddress)
	return check
}

// IsValidHostname reports whether name is a valid dot-separated hostname:
// up to 64 labels of 1-63 [A-Za-z0-9-] chars (no leading/trailing dash),
// 255 chars total including dots.
func IsValidHostname(name string) CheckResult {
	if name == "" || len(name) > 255 {
		return Fail("Invalid hostname “%s”", name)
	}
	labels := strings.Split(name, ".")
	if len(labels) > 64 {
		return Fail("Invalid hostname “%s”", name)
	}
	for _, label := range labels {
		if len(label) < 1 || len(label) > 63 || !hostnameLabelRegex.MatchString(label) {
			return Fail("Invalid hostname “%s”", name)
		}
	}
	return Pass()
}

// IsValidTimezone reports whether name is an entry of the host's IANA
// timezone database. Case-sensitive: the database is.
func IsValidTimezone(name string, zones refdata.ZoneIndex) CheckResult {
	if !timezoneRegex.MatchString(name) {
		return Fail("Invalid zone format “%s”", name)
	}
	if !zones.Has(name) {
		return Fail("Zone “%s” not found", name)
	}
	return Pass()
}

// IsValidCountryCode reports whether code is an assigned ISO-3166 alpha-2
// country code or the documented unrestricted sentinel.
func IsValidCountryCode(code string, countries refdata.CountryTable) CheckResult {
	if code == UnrestrictedCountryCode {
		return Pass()
	}
	if !countries.Has(code) {
		return Fail("Country code `%s` not found", code)
	}
	return Pass()
}

// IsValidSSID reports whether ssid is a valid WiFi network name.
func IsValidSSID(ssid string) CheckResult {
	if !ssidRegex.MatchString(ssid) {
		return Fail("Must be 32 chars max without: !#;+]/")
	}
	return Pass()
}

// IsValidWPA2Passphrase reports whether passphrase is usable for WPA2-PSK.
func IsValidWPA2Passphrase(passphrase string) CheckResult {
	if !passphraseRegex.MatchString(passphrase) {
		return Fail("Must be 8-63 long latin chars and symbols")
	}
	return Pass()
}

// IsValidWiFiChannel reports whether channel is a 2.4GHz WiFi channel.
// Channels 12-14 pass with a warning in the help text.
func IsValidWiFiChannel(channel int) CheckResult {
	if channel < 1 || channel > 14 {
		return Fail("Must be 1-14 (1-11 for most places)")
	}
	if channel > 11 {
		return Passf("Channels 12-14 are not allowed everywhere")
	}
	return Pass()
}

// IsValidTLD reports whether tld is usable as the hotspot's local TLD.
func IsValidTLD(tld string) CheckResult {
	for _, forbidden := range forbiddenTLDs {
		if tld == forbidden {
			return Fail("Unauthorized tld `%s`", tld)
		}
	}
	if !tldRegex.MatchString(tld) {
		return Fail("Invalid hotspot tld `%s`", tld)
	}
	return Pass()
}

// IsValidDomain reports whether domain is a valid domain (without tld).
func IsValidDomain(domain string) CheckResult {
	if !IsValidHostname(domain).OK() {
		return Fail("Invalid domain `%s`", domain)
	}
	return Pass()
}

// IsValidInterfaceName reports whether name looks like a kernel network
// interface name (wlan0, eth0, ...).
func IsValidInterfaceName(name string) CheckResult {
	if !ifaceNameRegex.MatchString(name) {
		return Fail("Invalid interface name format “%s”", name)
	}
	return Pass()
}

// IsValidFirmwareFor reports whether firmware is a selectable variant for
// chipset.
func IsValidFirmwareFor(chipset, firmware string) CheckResult {
	variants, ok := Firmwares[chipset]
	if !ok {
		return Fail("Unknown chipset `%s`", chipset)
	}
	for _, v := range variants {
		if firmware == v {
			return Pass()
		}
	}
	return Fail("Unknown firmware `%s` for chipset %s", firmware, chipset)
}

// IsValidEthernetConfig validates an ethernet configuration: dhcp needs
// nothing else; static needs an address, routers and dns servers.
func IsValidEthernetConfig(networkType, address string, routers, dns []string) CheckResult {
	if networkType != "dhcp" && networkType != "static" {
		return Fail("Incorrect network type: %s", networkType)
	}
	if networkType == "dhcp" {
		return Pass()
	}

	if address == "" {
		return Fail("Missing IP address")
	}
	if !IsValidIPv4(address, true).OK() {
		return Fail("IP address is not correct")
	}

	if len(routers) == 0 {
		return Fail("`routers` must be a non-empty list")
	}
	for _, router := range routers {
		if !IsValidIPv4(router, true).OK() {
			return Fail("Invalid router address: %s", router)
		}
	}

	if len(dns) == 0 {
		return Fail("`dns` must be a list")
	}
	for _, server := range dns {
		if !IsValidIPv4(server, true).OK() {
			return Fail("Invalid DNS server address: %s", server)
		}
	}

	return Pass()
}

// APParams carries every value the ap subsystem consumes, after defaults
// and derivations were applied.
type APParams struct {
	SSID             string
	Hide             bool
	Passphrase       string
	Address          string
	AsGateway        bool
	Spoof            string
	TLD              string
	Domain           string
	Welcome          string
	CapturedAddress  string
	Channel          int
	Country          string
	Interface        string
	DHCPRange        string
	Network          string
	DNS              []string
	OtherInterfaces  []string
	ExceptInterfaces []string
	NoDHCPInterfaces []string
}

// IsValidAPConfig validates a complete ap configuration, failing fast on
// the first invalid field.
func IsValidAPConfig(p APParams, countries refdata.CountryTable) CheckResult {
	if check := IsValidSSID(p.SSID); !check.OK() {
		return check.prefix("SSID")
	}

	if p.Passphrase != "" {
		if check := IsValidWPA2Passphrase(p.Passphrase); !check.OK() {
			return check.prefix("Passphrase")
		}
	}

	if !IsValidIPv4(p.Address, true).OK() {
		return Fail("Invalid IPv4 address")
	}

	spoofOK := false
	for _, v := range validSpoofValues {
		if strings.ToLower(p.Spoof) == v {
			spoofOK = true
			break
		}
	}
	if p.Spoof != "" && !spoofOK {
		return Fail("Invalid spoof value `%s`", p.Spoof)
	}

	if check := IsValidTLD(p.TLD); !check.OK() {
		return check.prefix("TLD")
	}
	if check := IsValidDomain(p.Domain); !check.OK() {
		return check.prefix("Domain")
	}
	if p.Welcome != "" {
		if check := IsValidDomain(p.Welcome); !check.OK() {
			return check.prefix("Welcome Domain")
		}
	}
	if p.CapturedAddress != "" {
		if check := IsValidIPv4(p.CapturedAddress, true); !check.OK() {
			return check.prefix("Captured address")
		}
	}

	if check := IsValidWiFiChannel(p.Channel); !check.OK() {
		return check.prefix("Channel")
	}
	if check := IsValidCountryCode(p.Country, countries); !check.OK() {
		return check.prefix("Country")
	}
	if check := IsValidInterfaceName(p.Interface); !check.OK() {
		return check.prefix("Interface")
	}
	if check := IsValidDHCPRange(p.DHCPRange, p.Address); !check.OK() {
		return check.prefix("DHCP-range")
	}
	if check := IsValidNetwork(p.Network, p.Address, false); !check.OK() {
		return check.prefix("Network")
	}

	for i, server := range p.DNS {
		if check := IsValidIPv4(server, true); !check.OK() {
			return Fail("DNS #%d: %s", i, check.HelpText)
		}
	}
	for i, iface := range p.OtherInterfaces {
		if check := IsValidInterfaceName(iface); !check.OK() {
			return Fail("Other-interfaces #%d: %s", i, check.HelpText)
		}
	}
	for i, iface := range p.ExceptInterfaces {
		if check := IsValidInterfaceName(iface); !check.OK() {
			return Fail("Except-interfaces #%d: %s", i, check.HelpText)
		}
	}
	for i, iface := range p.NoDHCPInterfaces {
		if check := IsValidInterfaceName(iface); !check.OK() {
			return Fail("NoDHCP-interfaces #%d: %s", i, check.HelpText)
		}
	}

	return Pass()
}
