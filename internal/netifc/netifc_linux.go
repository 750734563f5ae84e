//go:build linux

package netifc

import (
	"fmt"

	"github.com/vishvananda/netlink"

	"github.com/offspot/runtime-config/internal/logging"
)

// netlinkInterfacer is the Linux implementation backed by netlink.
type netlinkInterfacer struct{}

func newPlatformInterfacer() Interfacer {
	return &netlinkInterfacer{}
}

func (n *netlinkInterfacer) Exists(name string) (bool, error) {
	if _, err := netlink.LinkByName(name); err != nil {
		if _, notFound := err.(netlink.LinkNotFoundError); notFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (n *netlinkInterfacer) IPv4Addrs(name string) ([]string, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}
	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("listing addresses on %s: %w", name, err)
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.IPNet.String())
	}
	return out, nil
}

func (n *netlinkInterfacer) EnsureIPv4(name, cidr string) error {
	if err := validCIDR(cidr); err != nil {
		return err
	}
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", name, err)
	}

	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", cidr, err)
	}
	existing, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return fmt.Errorf("listing addresses on %s: %w", name, err)
	}
	present := false
	for _, a := range existing {
		if a.IPNet.String() == addr.IPNet.String() {
			present = true
			break
		}
	}
	if !present {
		if err := netlink.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("assigning %s to %s: %w", cidr, name, err)
		}
		logging.WithComponent("netifc").Info("assigned address", "interface", name, "address", cidr)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bringing up %s: %w", name, err)
	}
	return nil
}
