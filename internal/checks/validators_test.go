package checks

import (
	"strings"
	"testing"

	"github.com/offspot/runtime-config/internal/refdata"
)

func TestIsValidIPv4(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		usable bool
		want   bool
	}{
		// Happy paths
		{"plain host", "192.168.2.1", true, true},
		{"high host", "10.0.0.254", true, true},
		{"netmask not usable", "255.255.255.0", false, true},
		{"zero not usable", "0.0.0.0", false, true},

		// Sad paths
		{"empty", "", true, false},
		{"word", "hello", true, false},
		{"three octets", "192.168.2", true, false},
		{"five octets", "192.168.2.1.4", true, false},
		{"octet overflow", "192.168.2.256", true, false},
		{"leading zero", "192.168.02.1", true, false},
		{"cidr notation", "192.168.2.1/24", true, false},
		{"ipv6", "fe80::1", true, false},
		{"network address", "192.168.2.0", true, false},
		{"broadcast address", "192.168.2.255", true, false},
		{"unspecified", "0.0.0.0", true, false},
		{"loopback", "127.0.0.1", true, false},
		{"link local", "169.254.10.10", true, false},
		{"multicast", "224.0.0.5", true, false},
		{"reserved", "240.1.1.1", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidIPv4(tt.input, tt.usable)
			if got.OK() != tt.want {
				t.Errorf("IsValidIPv4(%q, usable=%v) = %v (%s), want %v",
					tt.input, tt.usable, got.OK(), got.HelpText, tt.want)
			}
		})
	}
}

func TestCheckResultErr(t *testing.T) {
	if err := Pass().Err(); err != nil {
		t.Errorf("Pass().Err() = %v", err)
	}
	err := Fail("bad value `%s`", "x").Err()
	if err == nil || err.Error() != "bad value `x`" {
		t.Errorf("Fail().Err() = %v", err)
	}
}

func TestIsValidNetwork(t *testing.T) {
	tests := []struct {
		name    string
		network string
		address string
		want    bool
	}{
		{"matching /24", "192.168.2.0/24", "192.168.2.1", true},
		{"matching /16", "10.8.0.0/16", "10.8.4.1", true},
		{"point to point /31", "192.168.2.0/31", "192.168.2.1", true},

		{"host bits set", "192.168.2.1/24", "192.168.2.1", false},
		{"single host /32", "192.168.2.1/32", "192.168.2.1", false},
		{"address outside", "192.168.3.0/24", "192.168.2.1", false},
		{"not a cidr", "192.168.2.0", "192.168.2.1", false},
		{"loopback network", "127.0.0.0/8", "127.0.0.1", false},
		{"multicast network", "224.0.0.0/24", "224.0.0.1", false},
		{"bad address", "192.168.2.0/24", "not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidNetwork(tt.network, tt.address, false)
			if got.OK() != tt.want {
				t.Errorf("IsValidNetwork(%q, %q) = %v (%s), want %v",
					tt.network, tt.address, got.OK(), got.HelpText, tt.want)
			}
		})
	}
}

func TestIsValidNetworkAllowAny(t *testing.T) {
	if IsValidNetwork("127.0.0.0/8", "127.0.0.1", true).OK() != true {
		t.Error("allowAny should accept loopback network")
	}
}

func TestParseDHCPRange(t *testing.T) {
	tests := []struct {
		name     string
		rangeStr string
		address  string
		want     bool
	}{
		{"classic", "192.168.2.100,192.168.2.240,255.255.255.0,1h", "192.168.2.1", true},
		{"infinite lease", "192.168.2.100,192.168.2.240,255.255.255.0,infinite", "192.168.2.1", true},
		{"host inside range", "192.168.2.2,192.168.2.254,255.255.255.0,12h", "192.168.2.100", true},
		{"week lease", "10.0.0.10,10.0.0.20,255.255.255.0,2w", "10.0.0.1", true},

		{"missing fields", "192.168.2.100,192.168.2.240,255.255.255.0", "192.168.2.1", false},
		{"bad start", "192.168.2.0,192.168.2.240,255.255.255.0,1h", "192.168.2.1", false},
		{"bad end", "192.168.2.100,999.1.1.1,255.255.255.0,1h", "192.168.2.1", false},
		{"bad netmask ip", "192.168.2.100,192.168.2.240,255.255.256.0,1h", "192.168.2.1", false},
		{"non-contiguous netmask", "192.168.2.100,192.168.2.240,255.0.255.0,1h", "192.168.2.1", false},
		{"start equals end", "192.168.2.100,192.168.2.100,255.255.255.0,1h", "192.168.2.1", false},
		{"start equals host", "192.168.2.1,192.168.2.240,255.255.255.0,1h", "192.168.2.1", false},
		{"end equals host", "192.168.2.100,192.168.2.1,255.255.255.0,1h", "192.168.2.1", false},
		{"start after end", "192.168.2.240,192.168.2.100,255.255.255.0,1h", "192.168.2.1", false},
		{"end outside network", "192.168.2.100,192.168.3.10,255.255.255.0,1h", "192.168.2.1", false},
		{"host outside network", "192.168.2.100,192.168.2.240,255.255.255.0,1h", "192.168.5.1", false},
		{"missing ttl", "192.168.2.100,192.168.2.240,255.255.255.0,", "192.168.2.1", false},
		{"short ttl", "192.168.2.100,192.168.2.240,255.255.255.0,h", "192.168.2.1", false},
		{"bad ttl suffix", "192.168.2.100,192.168.2.240,255.255.255.0,1x", "192.168.2.1", false},
		{"bad ttl digits", "192.168.2.100,192.168.2.240,255.255.255.0,abch", "192.168.2.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, check := ParseDHCPRange(tt.rangeStr, tt.address)
			if check.OK() != tt.want {
				t.Fatalf("ParseDHCPRange(%q, %q) = %v (%s), want %v",
					tt.rangeStr, tt.address, check.OK(), check.HelpText, tt.want)
			}
			if check.OK() && r.String() != tt.rangeStr {
				t.Errorf("parsed range round-trips to %q", r.String())
			}
		})
	}
}

func TestParseDHCPRangeCountsHosts(t *testing.T) {
	_, check := ParseDHCPRange("192.168.2.100,192.168.2.240,255.255.255.0,1h", "192.168.2.1")
	if check.HelpText != "140 available addresses" {
		t.Errorf("help text = %q", check.HelpText)
	}

	// host inside the span eats one address
	_, check = ParseDHCPRange("192.168.2.100,192.168.2.240,255.255.255.0,1h", "192.168.2.150")
	if check.HelpText != "139 available addresses" {
		t.Errorf("help text = %q", check.HelpText)
	}
}

func TestIsValidHostname(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "emmet", true},
		{"dashed", "library-lab-pi23", true},
		{"dotted", "kiwix.campus.lan", true},
		{"single char", "a", true},
		{"max label", strings.Repeat("a", 63), true},

		{"empty", "", false},
		{"empty label", "a..b", false},
		{"leading dash", "-emmet", false},
		{"trailing dash", "emmet-", false},
		{"leading dot", ".emmet", false},
		{"underscore", "em_met", false},
		{"long label", strings.Repeat("a", 64), false},
		{"too long overall", strings.Repeat("ab.", 100), false},
		{"300 chars dotted", strings.Repeat("abcde.", 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidHostname(tt.input)
			if got.OK() != tt.want {
				t.Errorf("IsValidHostname(%q) = %v, want %v", tt.input, got.OK(), tt.want)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	zones := refdata.ZonesFrom("UTC", "Europe/Paris", "Asia/Taipei")

	tests := []struct {
		input string
		want  bool
	}{
		{"UTC", true},
		{"Europe/Paris", true},
		{"Asia/Taipei", true},
		{"europe/paris", false}, // case-sensitive
		{"Mars/Olympus", false},
		{"Bad zone!", false},
		{"", false},
	}
	for _, tt := range tests {
		got := IsValidTimezone(tt.input, zones)
		if got.OK() != tt.want {
			t.Errorf("IsValidTimezone(%q) = %v (%s), want %v", tt.input, got.OK(), got.HelpText, tt.want)
		}
	}
}

func TestIsValidCountryCode(t *testing.T) {
	countries := refdata.Countries()

	tests := []struct {
		input string
		want  bool
	}{
		{"FR", true},
		{"fr", true}, // normalized to upper case
		{"TW", true},
		{UnrestrictedCountryCode, true}, // reserved sentinel, not in ISO table
		{"XX", false},
		{"FRA", false},
		{"", false},
	}
	for _, tt := range tests {
		got := IsValidCountryCode(tt.input, countries)
		if got.OK() != tt.want {
			t.Errorf("IsValidCountryCode(%q) = %v, want %v", tt.input, got.OK(), tt.want)
		}
	}
}

func TestIsValidSSID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "Welcome WiFi", true},
		{"max length", strings.Repeat("a", 32), true},
		{"utf8", "Bibliothèque", true},

		{"empty", "", false},
		{"too long", strings.Repeat("a", 33), false},
		{"leading bang", "!network", false},
		{"leading hash", "#network", false},
		{"contains plus", "net+work", false},
		{"contains slash", "net/work", false},
		{"contains quote", `net"work`, false},
		{"contains tab", "net\twork", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidSSID(tt.input)
			if got.OK() != tt.want {
				t.Errorf("IsValidSSID(%q) = %v, want %v", tt.input, got.OK(), tt.want)
			}
		})
	}
}

func TestIsValidWPA2Passphrase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "this is secret", true},
		{"min length", "12345678", true},
		{"max length", strings.Repeat("x", 63), true},
		{"symbols", "p@ss w0rd!", true},

		{"too short", "1234567", false},
		{"too long", strings.Repeat("x", 64), false},
		{"non latin", "contraseña-secreta", false},
		{"control char", "pass\x01word", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidWPA2Passphrase(tt.input)
			if got.OK() != tt.want {
				t.Errorf("IsValidWPA2Passphrase(%q) = %v, want %v", tt.input, got.OK(), tt.want)
			}
		})
	}
}

func TestIsValidWiFiChannel(t *testing.T) {
	for ch := 1; ch <= 11; ch++ {
		if got := IsValidWiFiChannel(ch); !got.OK() || got.HelpText != "" {
			t.Errorf("channel %d = %v (%s)", ch, got.OK(), got.HelpText)
		}
	}
	for ch := 12; ch <= 14; ch++ {
		got := IsValidWiFiChannel(ch)
		if !got.OK() || got.HelpText == "" {
			t.Errorf("channel %d should pass with warning, got %v (%s)", ch, got.OK(), got.HelpText)
		}
	}
	for _, ch := range []int{0, -1, 15, 36} {
		if IsValidWiFiChannel(ch).OK() {
			t.Errorf("channel %d accepted", ch)
		}
	}
}

func TestIsValidTLD(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"offspot", true},
		{"hotspot", true},
		{"my-tld", true},
		{"a1", true},

		{"local", false},
		{"localhost", false},
		{"example", false},
		{"invalid", false},
		{"onion", false},
		{"test", false},
		{"1tld", false},
		{"-tld", false},
		{"", false},
	}
	for _, tt := range tests {
		got := IsValidTLD(tt.input)
		if got.OK() != tt.want {
			t.Errorf("IsValidTLD(%q) = %v, want %v", tt.input, got.OK(), tt.want)
		}
	}
}

func TestIsValidInterfaceName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"wlan0", true},
		{"eth0", true},
		{"wlan10", true},

		{"lo", false},
		{"0eth", false},
		{"eth", false},
		{"ETH0", false},
		{"eth0;rm", false},
		{"", false},
	}
	for _, tt := range tests {
		got := IsValidInterfaceName(tt.input)
		if got.OK() != tt.want {
			t.Errorf("IsValidInterfaceName(%q) = %v, want %v", tt.input, got.OK(), tt.want)
		}
	}
}

func TestIsValidFirmwareFor(t *testing.T) {
	if !IsValidFirmwareFor("brcm43455", "raspios").OK() {
		t.Error("raspios variant rejected")
	}
	if IsValidFirmwareFor("brcm43455", "nonsense").OK() {
		t.Error("unknown variant accepted")
	}
	if IsValidFirmwareFor("rtl8812", "raspios").OK() {
		t.Error("unknown chipset accepted")
	}
}

func TestIsValidEthernetConfig(t *testing.T) {
	tests := []struct {
		name        string
		networkType string
		address     string
		routers     []string
		dns         []string
		want        bool
	}{
		{"dhcp needs nothing", "dhcp", "", nil, nil, true},
		{"static full", "static", "192.168.5.1", []string{"192.168.5.200"}, []string{"192.168.5.200"}, true},

		{"bad type", "bonded", "", nil, nil, false},
		{"static no address", "static", "", []string{"192.168.5.200"}, []string{"1.1.1.1"}, false},
		{"static bad address", "static", "999.1.1.1", []string{"192.168.5.200"}, []string{"1.1.1.1"}, false},
		{"static no routers", "static", "192.168.5.1", nil, []string{"1.1.1.1"}, false},
		{"static bad router", "static", "192.168.5.1", []string{"not-an-ip"}, []string{"1.1.1.1"}, false},
		{"static no dns", "static", "192.168.5.1", []string{"192.168.5.200"}, nil, false},
		{"static bad dns", "static", "192.168.5.1", []string{"192.168.5.200"}, []string{"dns"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidEthernetConfig(tt.networkType, tt.address, tt.routers, tt.dns)
			if got.OK() != tt.want {
				t.Errorf("IsValidEthernetConfig() = %v (%s), want %v", got.OK(), got.HelpText, tt.want)
			}
		})
	}
}

func validAPParams() APParams {
	return APParams{
		SSID:            "Welcome WiFi",
		Passphrase:      "this is secret",
		Address:         "192.168.2.1",
		Spoof:           "auto",
		TLD:             "offspot",
		Domain:          "generic",
		Welcome:         "goto.kiwix",
		CapturedAddress: "198.51.100.1",
		Channel:         11,
		Country:         "FR",
		Interface:       "wlan0",
		DHCPRange:       "192.168.2.100,192.168.2.240,255.255.255.0,1h",
		Network:         "192.168.2.0/24",
		DNS:             []string{"8.8.8.8", "1.1.1.1"},
	}
}

func TestIsValidAPConfig(t *testing.T) {
	countries := refdata.Countries()

	if check := IsValidAPConfig(validAPParams(), countries); !check.OK() {
		t.Fatalf("valid config rejected: %s", check.HelpText)
	}

	mutations := []struct {
		name   string
		mutate func(*APParams)
		prefix string
	}{
		{"bad ssid", func(p *APParams) { p.SSID = "#bad" }, "SSID"},
		{"bad passphrase", func(p *APParams) { p.Passphrase = "short" }, "Passphrase"},
		{"bad address", func(p *APParams) { p.Address = "192.168.2.0" }, "Invalid IPv4"},
		{"bad spoof", func(p *APParams) { p.Spoof = "maybe" }, "Invalid spoof"},
		{"bad tld", func(p *APParams) { p.TLD = "local" }, "TLD"},
		{"bad domain", func(p *APParams) { p.Domain = "a..b" }, "Domain"},
		{"bad welcome", func(p *APParams) { p.Welcome = "-nope" }, "Welcome"},
		{"bad captured", func(p *APParams) { p.CapturedAddress = "224.0.0.1" }, "Captured"},
		{"bad channel", func(p *APParams) { p.Channel = 15 }, "Channel"},
		{"bad country", func(p *APParams) { p.Country = "XX" }, "Country"},
		{"bad interface", func(p *APParams) { p.Interface = "WLAN0" }, "Interface"},
		{"bad range", func(p *APParams) { p.DHCPRange = "oops" }, "DHCP-range"},
		{"bad network", func(p *APParams) { p.Network = "10.0.0.0/24" }, "Network"},
		{"bad dns", func(p *APParams) { p.DNS = []string{"8.8.8.8", "zz"} }, "DNS #1"},
		{"bad other iface", func(p *APParams) { p.OtherInterfaces = []string{"lo"} }, "Other-interfaces #0"},
		{"bad except iface", func(p *APParams) { p.ExceptInterfaces = []string{"lo"} }, "Except-interfaces #0"},
		{"bad nodhcp iface", func(p *APParams) { p.NoDHCPInterfaces = []string{"lo"} }, "NoDHCP-interfaces #0"},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			p := validAPParams()
			tt.mutate(&p)
			check := IsValidAPConfig(p, countries)
			if check.OK() {
				t.Fatalf("mutation accepted")
			}
			if !strings.Contains(check.HelpText, tt.prefix) {
				t.Errorf("help text %q does not name the failing field (%s)", check.HelpText, tt.prefix)
			}
		})
	}
}

func TestIsValidAPConfigOpenNetwork(t *testing.T) {
	p := validAPParams()
	p.Passphrase = "" // open network is allowed
	if check := IsValidAPConfig(p, refdata.Countries()); !check.OK() {
		t.Errorf("open network rejected: %s", check.HelpText)
	}
}
