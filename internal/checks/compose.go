package checks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ComposeOptions tunes the structural compose-document check.
// These checks are cheap and offline; registry image verification is a
// separate, network-touching step (see the compose package).
type ComposeOptions struct {
	// RequireServices rejects documents with an empty services mapping.
	RequireServices bool
	// RequireImage rejects services without an image reference
	// (`build:` is not supported on the appliance).
	RequireImage bool
	// RequiredPorts lists host TCP ports that must be exposed.
	RequiredPorts []int
}

// DefaultComposeOptions covers the structural requirements every
// compose document must meet. Callers add RequiredPorts as needed.
func DefaultComposeOptions() ComposeOptions {
	return ComposeOptions{RequireServices: true, RequireImage: true}
}

// IsValidCompose reports whether doc looks like a valid docker-compose
// mapping: a `services` mapping of named service definitions, each with
// an image, with the required host ports exposed over TCP.
func IsValidCompose(doc map[string]any, opts ComposeOptions) CheckResult {
	if doc == nil {
		return Fail("Incorrect type")
	}

	rawServices, ok := doc["services"]
	if !ok || rawServices == nil {
		return Fail("Missing `services:`")
	}
	services, ok := rawServices.(map[string]any)
	if !ok {
		return Fail("`services:` is not a dict")
	}
	if opts.RequireServices && len(services) == 0 {
		return Fail("No services defined")
	}

	// deterministic order so the first failing service is stable
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	if opts.RequireImage {
		for _, name := range names {
			service, ok := services[name].(map[string]any)
			if !ok {
				return Fail("Service `%s:` is not a dict", name)
			}
			image, present := service["image"]
			if !present || image == "" || image == nil {
				return Fail("Service `%s` has no `image`. `build` is not supported", name)
			}
			if _, ok := image.(string); !ok {
				return Fail("Service `%s` image format is invalid", name)
			}
		}
	}

	exposed := make(map[int]bool, len(opts.RequiredPorts))
	for _, p := range opts.RequiredPorts {
		exposed[p] = false
	}

	for _, name := range names {
		service, ok := services[name].(map[string]any)
		if !ok {
			continue
		}
		rawPorts, present := service["ports"]
		if networkMode, _ := service["network_mode"].(string); networkMode == "host" && present {
			return Fail("Service `%s`: Host network mode is incompatible with `ports`", name)
		}
		if !present || rawPorts == nil {
			continue
		}
		ports, ok := rawPorts.([]any)
		if !ok {
			return Fail("Service `%s`: ports must be a list", name)
		}

		for _, port := range ports {
			switch p := port.(type) {
			case map[string]any:
				// long syntax
				if proto, _ := p["protocol"].(string); proto != "" && proto != "tcp" {
					continue
				}
				published := fmt.Sprintf("%v", p["published"])
				markExposed(exposed, published)
			case string:
				// short syntax; container-only ports are not exposures
				if !strings.Contains(p, ":") {
					continue
				}
				spec := p
				if idx := strings.LastIndex(spec, "/"); idx >= 0 {
					if spec[idx+1:] != "tcp" {
						continue
					}
					spec = spec[:idx]
				}
				// host side is either port[-range] or IP:port[-range]
				host := spec[:strings.LastIndex(spec, ":")]
				if idx := strings.LastIndex(host, ":"); idx >= 0 {
					host = host[idx+1:]
				}
				markExposed(exposed, host)
			default:
				// container-only numeric port
			}
		}
	}

	var missing []string
	for _, p := range opts.RequiredPorts {
		if !exposed[p] {
			missing = append(missing, strconv.Itoa(p))
		}
	}
	if len(missing) > 0 {
		return Fail("Required TCP port·s (%s) missing", strings.Join(missing, ","))
	}

	return Pass()
}

func markExposed(exposed map[int]bool, rangeOrPort string) {
	for port, seen := range exposed {
		if !seen && PortInRange(rangeOrPort, port) {
			exposed[port] = true
		}
	}
}

// PortInRange reports whether expected falls inside a compose port
// string, either a single port ("80") or a range ("8000-8100").
func PortInRange(rangeOrPort string, expected int) bool {
	parts := strings.SplitN(rangeOrPort, "-", 2)
	for _, part := range parts {
		if part == "" || strings.Trim(part, "0123456789") != "" {
			return false
		}
	}
	if len(parts) == 1 {
		v, err := strconv.Atoi(parts[0])
		return err == nil && v == expected
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	return expected >= start && expected <= end
}
