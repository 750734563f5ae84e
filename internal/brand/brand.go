// Package brand provides centralized branding and system path constants.
// This makes it easy to rebrand the appliance tooling by changing brand.json.
//
// The identity is loaded from brand.json at compile time via go:embed so
// other tools (image builders, docs generators) can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds branding information and the system paths the tool owns.
type Brand struct {
	Name                 string `json:"name"`
	LowerName            string `json:"lowerName"`
	Vendor               string `json:"vendor"`
	Description          string `json:"description"`
	BinaryName           string `json:"binaryName"`
	ConfigEnvPrefix      string `json:"configEnvPrefix"`
	SettingsPath         string `json:"settingsPath"`
	DhcpcdConfPath       string `json:"dhcpcdConfPath"`
	HostapdConfPath      string `json:"hostapdConfPath"`
	DnsmasqConfPath      string `json:"dnsmasqConfPath"`
	DnsmasqSpoofConfPath string `json:"dnsmasqSpoofConfPath"`
	IptablesDir          string `json:"iptablesDir"`
	InterfacesPath       string `json:"interfacesPath"`
	SysctlForwardPath    string `json:"sysctlForwardPath"`
	ComposePath          string `json:"composePath"`
	FirmwareDir          string `json:"firmwareDir"`
	HostsPath            string `json:"hostsPath"`
	InternetStatusPath   string `json:"internetStatusPath"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Description = b.Description
	BinaryName = b.BinaryName
	ConfigEnvPrefix = b.ConfigEnvPrefix
	SettingsPath = b.SettingsPath
	DhcpcdConfPath = b.DhcpcdConfPath
	HostapdConfPath = b.HostapdConfPath
	DnsmasqConfPath = b.DnsmasqConfPath
	DnsmasqSpoofConfPath = b.DnsmasqSpoofConfPath
	IptablesDir = b.IptablesDir
	InterfacesPath = b.InterfacesPath
	SysctlForwardPath = b.SysctlForwardPath
	ComposePath = b.ComposePath
	FirmwareDir = b.FirmwareDir
	HostsPath = b.HostsPath
	InternetStatusPath = b.InternetStatusPath
}

// Exported variables for convenience
var (
	Name                 string
	LowerName            string
	Vendor               string
	Description          string
	BinaryName           string
	ConfigEnvPrefix      string
	SettingsPath         string
	DhcpcdConfPath       string
	HostapdConfPath      string
	DnsmasqConfPath      string
	DnsmasqSpoofConfPath string
	IptablesDir          string
	InterfacesPath       string
	SysctlForwardPath    string
	ComposePath          string
	FirmwareDir          string
	HostsPath            string
	InternetStatusPath   string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// UserAgent returns a User-Agent string for HTTP requests
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return Name + "/" + version
}

// GetSettingsPath returns the settings document path, checking env first.
// Priority: OFFSPOT_SETTINGS > SettingsPath
func GetSettingsPath() string {
	if p := os.Getenv(ConfigEnvPrefix + "_SETTINGS"); p != "" {
		return p
	}
	return SettingsPath
}

// GetRoot returns a prefix directory prepended to every managed path.
// OFFSPOT_ROOT is used by tests and image builds to operate on a staged
// filesystem tree instead of the live one.
func GetRoot() string {
	return os.Getenv(ConfigEnvPrefix + "_ROOT")
}

// Path returns p under the configured root prefix, if any.
func Path(p string) string {
	if root := GetRoot(); root != "" {
		return filepath.Join(root, p)
	}
	return p
}
