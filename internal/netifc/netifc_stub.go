//go:build !linux

package netifc

import "errors"

var errUnsupported = errors.New("interface configuration requires linux")

type stubInterfacer struct{}

func newPlatformInterfacer() Interfacer {
	return &stubInterfacer{}
}

func (s *stubInterfacer) Exists(name string) (bool, error) {
	return false, errUnsupported
}

func (s *stubInterfacer) IPv4Addrs(name string) ([]string, error) {
	return nil, errUnsupported
}

func (s *stubInterfacer) EnsureIPv4(name, cidr string) error {
	return errUnsupported
}
