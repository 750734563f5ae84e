package brand

import "testing"

func TestBrandLoaded(t *testing.T) {
	if Name == "" {
		t.Fatal("brand name not loaded from brand.json")
	}
	if BinaryName == "" {
		t.Error("binary name missing")
	}
	if DhcpcdConfPath == "" || DnsmasqConfPath == "" || HostapdConfPath == "" {
		t.Error("managed system paths missing")
	}
}

func TestPathWithRoot(t *testing.T) {
	t.Setenv(ConfigEnvPrefix+"_ROOT", "/tmp/staging")
	if got := Path("/etc/dhcpcd.conf"); got != "/tmp/staging/etc/dhcpcd.conf" {
		t.Errorf("Path() = %q", got)
	}
}

func TestPathWithoutRoot(t *testing.T) {
	t.Setenv(ConfigEnvPrefix+"_ROOT", "")
	if got := Path("/etc/dhcpcd.conf"); got != "/etc/dhcpcd.conf" {
		t.Errorf("Path() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(""); got != Name+"/dev" {
		t.Errorf("UserAgent() = %q", got)
	}
}
