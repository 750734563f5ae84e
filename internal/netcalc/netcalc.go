// Package netcalc provides the IPv4 arithmetic behind the hotspot
// configuration: strict address parsing, netmask handling, and derivation
// of DHCP ranges and networks from a single base address.
package netcalc

import (
	"fmt"
	"net"
	"strings"
)

// Defaults used when a DHCP range is derived from a bare address.
const (
	DefaultRangeStartOctet = 100
	DefaultRangeEndOctet   = 240
	DefaultLeaseTTL        = "1h"
	defaultNetmask         = "255.255.255.0"
)

// Range describes a DHCP lease range within a network.
// TTL is kept as the literal dnsmasq lease-time string ("1h", "infinite")
// since that is what the rendered configuration consumes.
type Range struct {
	Address net.IP
	Start   net.IP
	End     net.IP
	Netmask net.IP
	TTL     string
}

// String renders the range in dnsmasq's start,end,netmask,ttl form.
func (r Range) String() string {
	return strings.Join([]string{
		r.Start.String(), r.End.String(), r.Netmask.String(), r.TTL,
	}, ",")
}

// ParseIPv4 parses a strict dotted-quad IPv4 literal: four dot-separated
// decimal octets in 0-255 with no leading zeros beyond "0" itself.
// net.ParseIP is looser than we want here (it accepts IPv6 and, per
// ParseIP docs, used to accept leading zeros).
func ParseIPv4(s string) (net.IP, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, false
	}
	ip := make(net.IP, 4)
	for i, part := range parts {
		if part == "" || len(part) > 3 {
			return nil, false
		}
		if len(part) > 1 && part[0] == '0' {
			return nil, false
		}
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return nil, false
		}
		ip[i] = byte(n)
	}
	return ip, true
}

// ToUint32 converts a 4-byte IPv4 address to its numeric value.
func ToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

// FromUint32 converts a numeric value back to a 4-byte IPv4 address.
func FromUint32(n uint32) net.IP {
	return net.IPv4(byte(n>>24), byte(n>>16), byte(n>>8), byte(n)).To4()
}

// IsNetmask reports whether ip is a valid contiguous IPv4 netmask.
func IsNetmask(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	ones, bits := net.IPMask(v4).Size()
	return bits == 32 && (ones > 0 || ToUint32(v4) == 0)
}

// NetworkOf returns the network containing ip under mask.
func NetworkOf(ip net.IP, mask net.IP) *net.IPNet {
	m := net.IPMask(mask.To4())
	return &net.IPNet{IP: ip.To4().Mask(m), Mask: m}
}

// BroadcastOf returns the broadcast address of n.
func BroadcastOf(n *net.IPNet) net.IP {
	ones, bits := n.Mask.Size()
	hostBits := uint(bits - ones)
	return FromUint32(ToUint32(n.IP) | (1<<hostBits - 1))
}

// SlashTwentyFourOf returns the /24 network containing address.
func SlashTwentyFourOf(address net.IP) *net.IPNet {
	mask := net.CIDRMask(24, 32)
	return &net.IPNet{IP: address.To4().Mask(mask), Mask: mask}
}

// DefaultNetworkFor returns the CIDR string of the /24 containing
// address, used when `network` is omitted from an ap configuration.
func DefaultNetworkFor(address string) (string, error) {
	ip, ok := ParseIPv4(address)
	if !ok {
		return "", fmt.Errorf("not a valid IPv4: %s", address)
	}
	return SlashTwentyFourOf(ip).String(), nil
}

// DefaultRangeFor derives a DHCP range from a bare address: the
// .100-.240 span of the /24 containing it, with the default lease TTL.
func DefaultRangeFor(address string) (Range, error) {
	ip, ok := ParseIPv4(address)
	if !ok {
		return Range{}, fmt.Errorf("not a valid IPv4: %s", address)
	}
	network := SlashTwentyFourOf(ip)
	base := ToUint32(network.IP)
	mask, _ := ParseIPv4(defaultNetmask)
	return Range{
		Address: ip,
		Start:   FromUint32(base + DefaultRangeStartOctet),
		End:     FromUint32(base + DefaultRangeEndOctet),
		Netmask: mask,
		TTL:     DefaultLeaseTTL,
	}, nil
}

// HostsBetween returns the number of assignable addresses from start to
// end exclusive, not counting host when it falls inside the span.
func HostsBetween(start, end, host net.IP) int {
	s, e := ToUint32(start), ToUint32(end)
	if e < s {
		return 0
	}
	n := int(e - s)
	h := ToUint32(host)
	if h >= s && h < e {
		n--
	}
	return n
}
