// Package netifc reads and assigns IPv4 addresses on network
// interfaces. The real implementation speaks netlink and is only built
// on Linux; other platforms get a stub so the tooling still compiles
// for development machines.
package netifc

import (
	"fmt"
	"net"
)

// Interfacer abstracts the per-interface address operations the
// configurators need.
type Interfacer interface {
	// Exists reports whether the named interface is present.
	Exists(name string) (bool, error)
	// IPv4Addrs lists the interface's IPv4 addresses in CIDR notation.
	IPv4Addrs(name string) ([]string, error)
	// EnsureIPv4 assigns an address (CIDR notation) to the interface
	// and brings it up, skipping the assignment if already present.
	EnsureIPv4(name, cidr string) error
}

// Default is the platform implementation. Tests swap in a fake.
var Default Interfacer = newPlatformInterfacer()

// FakeInterfacer is an in-memory Interfacer for tests.
type FakeInterfacer struct {
	Links map[string][]string
	Err   error
}

// NewFakeInterfacer creates a fake with the given interfaces present.
func NewFakeInterfacer(names ...string) *FakeInterfacer {
	links := make(map[string][]string, len(names))
	for _, n := range names {
		links[n] = nil
	}
	return &FakeInterfacer{Links: links}
}

func (f *FakeInterfacer) Exists(name string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.Links[name]
	return ok, nil
}

func (f *FakeInterfacer) IPv4Addrs(name string) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	addrs, ok := f.Links[name]
	if !ok {
		return nil, fmt.Errorf("no such interface: %s", name)
	}
	return addrs, nil
}

func (f *FakeInterfacer) EnsureIPv4(name, cidr string) error {
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.Links[name]; !ok {
		return fmt.Errorf("no such interface: %s", name)
	}
	for _, a := range f.Links[name] {
		if a == cidr {
			return nil
		}
	}
	f.Links[name] = append(f.Links[name], cidr)
	return nil
}

// validCIDR rejects malformed addresses before they reach netlink.
func validCIDR(cidr string) error {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return err
	}
	if ip.To4() == nil {
		return fmt.Errorf("not an IPv4 address: %s", cidr)
	}
	return nil
}
