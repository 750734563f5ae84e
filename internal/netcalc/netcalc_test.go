package netcalc

import (
	"net"
	"testing"
)

func TestParseIPv4(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"192.168.2.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"10.0.0.1", true},

		{"192.168.2", false},
		{"192.168.2.1.5", false},
		{"192.168.2.256", false},
		{"192.168.02.1", false}, // leading zero
		{"01.2.3.4", false},
		{"192.168.2.", false},
		{"a.b.c.d", false},
		{"::1", false},
		{"192.168.2.1/24", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := ParseIPv4(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseIPv4(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestDefaultRangeFor(t *testing.T) {
	r, err := DefaultRangeFor("192.168.2.1")
	if err != nil {
		t.Fatal(err)
	}

	if got := r.Start.String(); got != "192.168.2.100" {
		t.Errorf("Start = %s", got)
	}
	if got := r.End.String(); got != "192.168.2.240" {
		t.Errorf("End = %s", got)
	}
	if got := r.Netmask.String(); got != "255.255.255.0" {
		t.Errorf("Netmask = %s", got)
	}
	if r.TTL != DefaultLeaseTTL {
		t.Errorf("TTL = %s", r.TTL)
	}
	if got := r.String(); got != "192.168.2.100,192.168.2.240,255.255.255.0,1h" {
		t.Errorf("String() = %s", got)
	}

	// start/end stay within the /24 regardless of the host octet
	network := SlashTwentyFourOf(r.Address)
	if !network.Contains(r.Start) || !network.Contains(r.End) {
		t.Error("derived range escapes the /24")
	}
}

func TestDefaultRangeForHighHost(t *testing.T) {
	r, err := DefaultRangeFor("10.20.30.250")
	if err != nil {
		t.Fatal(err)
	}
	if r.Start.String() != "10.20.30.100" || r.End.String() != "10.20.30.240" {
		t.Errorf("range = %s", r.String())
	}
}

func TestDefaultRangeForInvalid(t *testing.T) {
	if _, err := DefaultRangeFor("not-an-ip"); err == nil {
		t.Error("expected error for invalid address")
	}
}

func TestDefaultNetworkFor(t *testing.T) {
	got, err := DefaultNetworkFor("192.168.5.17")
	if err != nil {
		t.Fatal(err)
	}
	if got != "192.168.5.0/24" {
		t.Errorf("DefaultNetworkFor = %s", got)
	}
}

func TestIsNetmask(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"255.255.255.0", true},
		{"255.255.0.0", true},
		{"255.255.255.255", true},
		{"255.255.255.192", true},
		{"255.0.255.0", false},
		{"0.255.255.0", false},
		{"192.168.2.1", false},
	}
	for _, tt := range tests {
		ip := net.ParseIP(tt.in)
		if got := IsNetmask(ip); got != tt.ok {
			t.Errorf("IsNetmask(%s) = %v, want %v", tt.in, got, tt.ok)
		}
	}
}

func TestBroadcastOf(t *testing.T) {
	_, n, _ := net.ParseCIDR("192.168.2.0/24")
	if got := BroadcastOf(n).String(); got != "192.168.2.255" {
		t.Errorf("BroadcastOf = %s", got)
	}
	_, n, _ = net.ParseCIDR("10.0.0.0/30")
	if got := BroadcastOf(n).String(); got != "10.0.0.3" {
		t.Errorf("BroadcastOf = %s", got)
	}
}

func TestHostsBetween(t *testing.T) {
	start, _ := ParseIPv4("192.168.2.100")
	end, _ := ParseIPv4("192.168.2.240")
	hostOutside, _ := ParseIPv4("192.168.2.1")
	hostInside, _ := ParseIPv4("192.168.2.150")

	if got := HostsBetween(start, end, hostOutside); got != 140 {
		t.Errorf("HostsBetween outside = %d", got)
	}
	if got := HostsBetween(start, end, hostInside); got != 139 {
		t.Errorf("HostsBetween inside = %d", got)
	}
	if got := HostsBetween(end, start, hostOutside); got != 0 {
		t.Errorf("HostsBetween inverted = %d", got)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	ip, _ := ParseIPv4("172.16.254.3")
	if got := FromUint32(ToUint32(ip)); !got.Equal(ip) {
		t.Errorf("round trip = %s", got)
	}
}
