// Package compose validates and installs the docker-compose document
// describing the content services the hotspot runs.
package compose

import (
	"fmt"

	yaml "gopkg.in/yaml.v2"

	"github.com/offspot/runtime-config/internal/armor"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
)

// Parse decodes a compose payload into a string-keyed document.
func Parse(payload []byte) (map[string]interface{}, error) {
	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parsing compose document: %w", err)
	}
	doc, ok := normalize(raw).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("compose document is not a mapping")
	}
	return doc, nil
}

// normalize converts yaml.v2's interface-keyed maps into string-keyed
// ones, recursively. Non-string keys are rendered with %v.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[fmt.Sprintf("%v", key)] = normalize(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, value := range v {
			out[i] = normalize(value)
		}
		return out
	default:
		return v
	}
}

// Validate runs the structural checks: defined services, an image per
// service, and something exposing the web port.
func Validate(doc map[string]interface{}) checks.CheckResult {
	opts := checks.DefaultComposeOptions()
	// the captive portal needs something answering on the web port
	opts.RequiredPorts = []int{80}
	return checks.IsValidCompose(doc, opts)
}

// Write re-encodes the document and writes it to path.
func Write(path string, doc map[string]interface{}) error {
	payload, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding compose document: %w", err)
	}
	if err := armor.WriteFile(path, string(payload)); err != nil {
		return fmt.Errorf("writing compose document: %w", err)
	}
	logging.WithComponent("compose").Info("compose document written", "path", path)
	return nil
}

// ServiceImages lists the image references of every service, keyed by
// service name. Non-mapping services are skipped: Validate reports
// those.
func ServiceImages(doc map[string]interface{}) map[string]string {
	out := map[string]string{}
	services, ok := doc["services"].(map[string]interface{})
	if !ok {
		return out
	}
	for name, svc := range services {
		conf, ok := svc.(map[string]interface{})
		if !ok {
			continue
		}
		if image, ok := conf["image"].(string); ok && image != "" {
			out[name] = image
		}
	}
	return out
}
