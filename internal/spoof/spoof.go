// Package spoof decides and applies the DNS "spoof" mode: answering
// every DNS query with the hotspot's captured address so offline clients
// land on the local portal instead of timing out.
package spoof

import (
	"os"
	"strings"

	"github.com/offspot/runtime-config/internal/armor"
)

// Markers delimiting the tool-owned spoof directive region.
const (
	StartMarker = "### dnsmasq-spoof: start ###"
	EndMarker   = "### dnsmasq-spoof: stop ###"
)

// Mode is the requested spoof behavior.
type Mode int

const (
	// ModeAuto enables spoofing only while the host is offline.
	ModeAuto Mode = iota
	// ModeOn spoofs unconditionally.
	ModeOn
	// ModeOff never spoofs.
	ModeOff
)

func (m Mode) String() string {
	switch m {
	case ModeOn:
		return "on"
	case ModeOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseMode maps the accepted spelling variants onto a Mode.
// The empty string means auto (the default).
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, true
	case "on", "true", "yes":
		return ModeOn, true
	case "off", "false", "no":
		return ModeOff, true
	default:
		return ModeAuto, false
	}
}

// Decision is the resolved spoof state for this run. It is re-derived on
// every invocation since connectivity changes between runs.
type Decision int

const (
	Disabled Decision = iota
	Enabled
)

func (d Decision) String() string {
	if d == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Resolve turns a requested mode and the current connectivity state into
// a decision: on and off are unconditional, auto spoofs iff offline.
func Resolve(mode Mode, online bool) Decision {
	switch mode {
	case ModeOn:
		return Enabled
	case ModeOff:
		return Disabled
	default:
		if online {
			return Disabled
		}
		return Enabled
	}
}

// Directive renders the dnsmasq catch-all address line, active or
// commented out depending on the decision.
func Directive(capturedAddress string, d Decision) string {
	line := "address=/#/" + capturedAddress
	if d == Disabled {
		line = "# " + line
	}
	return line
}

// Apply writes the decision into the spoof configuration file through
// the armor engine: the enabled/disabled state is a syntactic change in
// the armored region, not a separate flag file.
func Apply(path, capturedAddress string, d Decision) error {
	block := armor.Block{Path: path, Start: StartMarker, End: EndMarker}
	return block.Apply(Directive(capturedAddress, d))
}

// CurrentAddress extracts the captured address from the file at path,
// active or commented. Used to preserve the configured address across
// toggles.
func CurrentAddress(path string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimPrefix(line, "# ")
		if addr, ok := strings.CutPrefix(line, "address=/#/"); ok && addr != "" {
			return addr, true
		}
	}
	return "", false
}

// CurrentlyEnabled reports whether the file at path has an active spoof
// directive. A missing file counts as disabled.
func CurrentlyEnabled(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "address=/#/") {
			return true
		}
	}
	return false
}
