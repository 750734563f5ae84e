// Package settings loads the boot-time configuration document. The
// document is a request for change, not a configuration reference:
// absent keys mean "leave alone", never "reset to default", and keys
// are removed from the file once applied.
package settings

import (
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/offspot/runtime-config/internal/armor"
)

// Known top-level keys, in application order. Anything else in the
// document is ignored.
var KnownKeys = []string{"firmware", "timezone", "hostname", "ethernet", "ap", "containers"}

// Defaults for the ap object.
const (
	DefaultAddress         = "192.168.2.1"
	DefaultChannel         = 11
	DefaultCountry         = "FR"
	DefaultInterface       = "wlan0"
	DefaultTLD             = "offspot"
	DefaultDomain          = "generic"
	DefaultWelcome         = "goto.kiwix"
	DefaultCapturedAddress = "198.51.100.1"
	DefaultSpoof           = "auto"
)

// DefaultDNS returns the default upstream resolvers for the hotspot.
func DefaultDNS() []string {
	return []string{"8.8.8.8", "1.1.1.1"}
}

// AP is the hotspot section of the settings document.
type AP struct {
	SSID             string   `yaml:"ssid"`
	Passphrase       string   `yaml:"passphrase"`
	Address          string   `yaml:"address"`
	Hide             bool     `yaml:"hide"`
	AsGateway        bool     `yaml:"as-gateway"`
	TLD              string   `yaml:"tld"`
	Domain           string   `yaml:"domain"`
	Welcome          string   `yaml:"welcome"`
	Channel          int      `yaml:"channel"`
	Country          string   `yaml:"country"`
	Interface        string   `yaml:"interface"`
	DHCPRange        string   `yaml:"dhcp-range"`
	Network          string   `yaml:"network"`
	DNS              []string `yaml:"dns"`
	CapturedAddress  string   `yaml:"captured-address"`
	OtherInterfaces  []string `yaml:"other-interfaces"`
	ExceptInterfaces []string `yaml:"except-interfaces"`
	NoDHCPInterfaces []string `yaml:"nodhcp-interfaces"`
	Spoof            string   `yaml:"spoof"`
}

// WithDefaults fills every unset field with its documented default.
// SSID is left alone: it is required, not defaulted. The country code
// is accepted in any case but everything downstream (hostapd's
// regulatory domain included) wants it upper-case.
func (a AP) WithDefaults() AP {
	if a.Address == "" {
		a.Address = DefaultAddress
	}
	if a.Channel == 0 {
		a.Channel = DefaultChannel
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	a.Country = strings.ToUpper(a.Country)
	if a.Interface == "" {
		a.Interface = DefaultInterface
	}
	if a.TLD == "" {
		a.TLD = DefaultTLD
	}
	if a.Domain == "" {
		a.Domain = DefaultDomain
	}
	if a.Welcome == "" {
		a.Welcome = DefaultWelcome
	}
	if len(a.DNS) == 0 {
		a.DNS = DefaultDNS()
	}
	if a.CapturedAddress == "" {
		a.CapturedAddress = DefaultCapturedAddress
	}
	if a.Spoof == "" {
		a.Spoof = DefaultSpoof
	}
	return a
}

// FQDN returns the service domain under the hotspot TLD.
func (a AP) FQDN() string {
	return a.Domain + "." + a.TLD
}

// WelcomeFQDN returns the captive-portal welcome name under the TLD.
func (a AP) WelcomeFQDN() string {
	return a.Welcome + "." + a.TLD
}

// Ethernet is the wired-network section of the settings document.
type Ethernet struct {
	Type    string   `yaml:"type"`
	Address string   `yaml:"address"`
	Routers []string `yaml:"routers"`
	DNS     []string `yaml:"dns"`
}

// Document is a parsed settings file plus enough state to rewrite it
// with applied keys removed.
type Document struct {
	Path string

	raw map[string]interface{}
}

const banner = `# This file allows changing this Offspot's configuration on boot.
###########################
# It is **NOT** recommended to edit this file manually.
###########################
# It **must** remain a valid YAML (single) document.
#
# It is not a Configuration Reference.
# It's a request for change.
# On regular boots, this file should be empty.
`

// Load reads and parses the settings document at path.
func Load(path string) (*Document, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse(path, payload)
}

// Parse parses a settings payload. The path is retained for Save.
func Parse(path string, payload []byte) (*Document, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return &Document{Path: path, raw: doc}, nil
}

// Has reports whether the document requests a change for key. An
// explicit null value counts as absent.
func (d *Document) Has(key string) bool {
	v, ok := d.raw[key]
	return ok && v != nil
}

// Keys returns the requested keys, sorted for deterministic logs.
func (d *Document) Keys() []string {
	out := make([]string, 0, len(d.raw))
	for k := range d.raw {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode unmarshals the value under key into out. Structured values go
// through a YAML round-trip so the usual struct tags apply.
func (d *Document) Decode(key string, out interface{}) error {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return fmt.Errorf("no %s section in settings", key)
	}
	payload, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("re-encoding %s section: %w", key, err)
	}
	if err := yaml.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decoding %s section: %w", key, err)
	}
	return nil
}

// String returns the value under key as a string, for scalar sections
// like hostname and timezone.
func (d *Document) String(key string) (string, error) {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return "", fmt.Errorf("no %s section in settings", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s section is not a string", key)
	}
	return s, nil
}

// Raw returns the value under key as parsed, for sections passed
// through verbatim (containers).
func (d *Document) Raw(key string) (interface{}, bool) {
	v, ok := d.raw[key]
	return v, ok && v != nil
}

// Pop removes an applied key so the next Save drops it from disk.
func (d *Document) Pop(key string) {
	delete(d.raw, key)
}

// Save rewrites the document with the remaining keys. An empty
// document is written as a bare YAML marker so the file stays valid.
func (d *Document) Save() error {
	if len(d.raw) == 0 {
		return armor.WriteFile(d.Path, "---\n")
	}
	payload, err := yaml.Marshal(d.raw)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return armor.WriteFile(d.Path, banner+string(payload))
}
